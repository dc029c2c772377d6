package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xjinkx/license-gateway/internal/logger"
	"github.com/xjinkx/license-gateway/internal/models"
	"github.com/xjinkx/license-gateway/internal/upstream"
)

// Reset tokens granted alongside a normal license purchase.
const bonusResetTokens = 2

type PurchaseService struct {
	minter    KeyMinter
	users     UserStore
	products  ProductStore
	purchases PurchaseStore
}

func NewPurchaseService(minter KeyMinter, users UserStore, products ProductStore, purchases PurchaseStore) *PurchaseService {
	return &PurchaseService{
		minter:    minter,
		users:     users,
		products:  products,
		purchases: purchases,
	}
}

type PurchaseResult struct {
	OK                  bool     `json:"ok"`
	Licenses            []string `json:"licenses"`
	RemainingPoints     int      `json:"remainingPoints"`
	RemainingResetToken int      `json:"remainingResetToken"`
	ProductSolds        int      `json:"productSolds"`
	IsTokenProduct      bool     `json:"isTokenProduct"`
}

// Purchase debits the caller's points for qty units of a product. License
// products mint one key per unit; ResetToken products credit tokens instead
// and record placeholder rows. The debit itself is a conditional update, so
// two concurrent purchases can never drive the balance negative — the loser
// gets a 400 after minting (same accepted inconsistency window as a history
// insert failure).
func (s *PurchaseService) Purchase(ctx context.Context, userID uuid.UUID, productID uuid.UUID, qty int) (*PurchaseResult, error) {
	if qty < 1 {
		qty = 1
	}

	product, err := s.products.FindActiveByID(ctx, productID)
	if err != nil {
		return nil, internal("Internal server error")
	}
	if product == nil {
		return nil, notFound("Product not found")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, internal("Internal server error")
	}
	if user == nil {
		return nil, notFound("User not found")
	}

	total := product.Price * qty
	if user.Points < total {
		return nil, badRequest("Not enough points")
	}

	isTokenProduct := product.IsResetTokenProduct()

	var licenses []string
	var tokenAmount int

	if isTokenProduct {
		tokenAmount = qty
		for i := 0; i < qty; i++ {
			licenses = append(licenses, models.PlaceholderLicense)
		}
	} else {
		tokenAmount = bonusResetTokens
		for i := 0; i < qty; i++ {
			days := product.Duration
			result, uerr := s.minter.CreateKey(ctx, upstream.MintPayload{
				DiscordID: user.DiscordID,
				KeyDays:   &days,
			})
			if uerr != nil {
				return nil, uerr
			}

			license := result.UserKey
			if license == "" {
				license = result.Message
			}
			if license == "" {
				return nil, internal("Failed to generate license")
			}

			licenses = append(licenses, license)
		}
	}

	records := make([]models.PurchaseRecord, 0, len(licenses))
	for _, license := range licenses {
		records = append(records, models.PurchaseRecord{
			UserID:    user.ID,
			ProductID: product.ID,
			License:   license,
			DiscordID: user.DiscordID,
		})
	}

	if err := s.purchases.InsertBatch(ctx, records); err != nil {
		// Minted keys are not revoked; log them so they can be reconciled.
		logger.LogEvent(logrus.ErrorLevel, "purchase history insert failed after mint", logrus.Fields{
			"user_id":    user.ID.String(),
			"product_id": product.ID.String(),
			"licenses":   licenses,
			"error":      err.Error(),
		})
		return nil, internal("Failed to save purchase history")
	}

	debited, err := s.users.DebitPoints(ctx, user.ID, total)
	if err != nil {
		return nil, internal("Internal server error")
	}
	if !debited {
		return nil, badRequest("Not enough points")
	}

	if err := s.users.AddResetTokens(ctx, user.ID, tokenAmount); err != nil {
		logger.LogEvent(logrus.ErrorLevel, "reset token credit failed", logrus.Fields{
			"user_id": user.ID.String(),
			"error":   err.Error(),
		})
	}

	if err := s.products.IncrementSolds(ctx, product.ID, qty); err != nil {
		logger.LogEvent(logrus.ErrorLevel, "solds increment failed", logrus.Fields{
			"product_id": product.ID.String(),
			"error":      err.Error(),
		})
	}

	result := &PurchaseResult{
		OK:                  true,
		Licenses:            licenses,
		RemainingPoints:     user.Points - total,
		RemainingResetToken: user.ResetToken + tokenAmount,
		ProductSolds:        product.Solds + qty,
		IsTokenProduct:      isTokenProduct,
	}
	if isTokenProduct {
		// Token purchases carry no real licenses.
		result.Licenses = []string{}
	}

	return result, nil
}
