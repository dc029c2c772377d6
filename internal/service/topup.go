package service

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xjinkx/license-gateway/internal/logger"
	"github.com/xjinkx/license-gateway/internal/models"
	"github.com/xjinkx/license-gateway/internal/upstream"
)

const topupMethodAngpao = "truemoney-angpao"

// VoucherRedeemer is the slice of the payment provider the top-up flow needs.
type VoucherRedeemer interface {
	Redeem(ctx context.Context, voucherCode string) (*upstream.RedeemResult, *upstream.Error)
}

type TopUpService struct {
	redeemer VoucherRedeemer
	users    UserStore
	topups   TopUpStore
}

func NewTopUpService(redeemer VoucherRedeemer, users UserStore, topups TopUpStore) *TopUpService {
	return &TopUpService{
		redeemer: redeemer,
		users:    users,
		topups:   topups,
	}
}

type TopUpResult struct {
	Success   bool    `json:"success"`
	Amount    float64 `json:"amount"`
	NewPoints int     `json:"newPoints"`
	Owner     string  `json:"owner"`
	Message   string  `json:"message"`
}

// RedeemAngpao credits a user's balance from a TrueMoney gift voucher. The
// credited amount comes only from the provider response; points are stored
// as integers so the amount is rounded before it lands on the balance.
func (s *TopUpService) RedeemAngpao(ctx context.Context, userID uuid.UUID, giftLink string) (*TopUpResult, error) {
	voucherCode := upstream.ExtractVoucherCode(giftLink)
	if voucherCode == "" {
		return nil, badRequest("Invalid gift link format. Could not extract voucher code.")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, internal("Internal server error")
	}
	if user == nil {
		return nil, notFound("User not found")
	}

	redeemed, uerr := s.redeemer.Redeem(ctx, voucherCode)
	if uerr != nil {
		return nil, uerr
	}

	credit := int(math.Round(redeemed.Amount))
	if err := s.users.CreditPoints(ctx, user.ID, credit); err != nil {
		logger.LogEvent(logrus.ErrorLevel, "points credit failed after redemption", logrus.Fields{
			"user_id": user.ID.String(),
			"voucher": voucherCode,
			"amount":  redeemed.Amount,
			"error":   err.Error(),
		})
		return nil, internal("Failed to update points")
	}

	record := &models.TopUpRecord{
		UserID:    user.ID,
		Amount:    redeemed.Amount,
		Method:    topupMethodAngpao,
		VoucherID: voucherCode,
		Status:    models.TopUpStatusSuccess,
	}
	if err := s.topups.Insert(ctx, record); err != nil {
		// History failure is not worth failing the credit over.
		logger.LogEvent(logrus.ErrorLevel, "topup history insert failed", logrus.Fields{
			"user_id": user.ID.String(),
			"voucher": voucherCode,
			"error":   err.Error(),
		})
	}

	owner := redeemed.Owner
	if owner == "" {
		owner = "unknown"
	}

	return &TopUpResult{
		Success:   true,
		Amount:    redeemed.Amount,
		NewPoints: user.Points + credit,
		Owner:     owner,
		Message:   redeemed.Message,
	}, nil
}
