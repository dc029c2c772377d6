package service

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xjinkx/license-gateway/internal/logger"
	"github.com/xjinkx/license-gateway/internal/upstream"
)

const maxUserKeyLength = 200

// KeyMinter is the slice of the licensing provider the license service needs.
type KeyMinter interface {
	CreateKey(ctx context.Context, payload upstream.MintPayload) (*upstream.MintResult, *upstream.Error)
	GetUser(ctx context.Context, userKey string) (*upstream.KeyDetails, *upstream.Error)
	ResetHWID(ctx context.Context, userKey string, force bool) (*upstream.ResetResult, *upstream.Error)
}

type LicenseService struct {
	minter KeyMinter
	users  UserStore
}

func NewLicenseService(minter KeyMinter, users UserStore) *LicenseService {
	return &LicenseService{minter: minter, users: users}
}

// CreateKeyRequest is the inbound key creation body. Callers pick exactly one
// expiry mode: a relative duration (key_days + duration_type) or an absolute
// epoch (auth_expire, optionally claimed by identifier). Supplying both is
// rejected rather than silently resolved.
type CreateKeyRequest struct {
	KeyDays       *int   `json:"key_days"`
	DurationType  string `json:"duration_type"`
	AuthExpire    *int64 `json:"auth_expire"`
	Identifier    string `json:"identifier"`
	DiscordID     string `json:"discord_id"`
	HcaptchaToken string `json:"hcaptchaToken"`
}

// ResolveMintPayload validates the request's expiry mode and builds the
// provider payload. Relative durations count from first use; a claimed
// absolute expiry counts from mint; an unclaimed absolute expiry is converted
// to a relative duration here.
func ResolveMintPayload(req CreateKeyRequest, now time.Time) (upstream.MintPayload, error) {
	if req.KeyDays != nil && req.AuthExpire != nil {
		return upstream.MintPayload{}, badRequest("Provide either key_days or auth_expire, not both")
	}

	identity := strings.TrimSpace(req.Identifier)
	if identity == "" {
		identity = strings.TrimSpace(req.DiscordID)
	}

	if req.KeyDays != nil {
		amount := *req.KeyDays
		if amount <= 0 {
			return upstream.MintPayload{}, badRequest("key_days must be a positive number")
		}

		payload := upstream.MintPayload{DiscordID: identity}
		if payload.DiscordID == "" {
			payload.DiscordID = GenerateDiscordID()
		}

		switch req.DurationType {
		case "", "days":
			payload.KeyDays = &amount
		case "hours":
			payload.KeyHours = &amount
		default:
			return upstream.MintPayload{}, badRequest("duration_type must be \"days\" or \"hours\"")
		}

		return payload, nil
	}

	if req.AuthExpire != nil {
		expire := *req.AuthExpire
		if expire <= now.Unix() {
			return upstream.MintPayload{}, badRequest("auth_expire must be in the future")
		}

		if identity != "" {
			// Claimed key: fixed expiry epoch regardless of first use.
			return upstream.MintPayload{DiscordID: identity, AuthExpire: &expire}, nil
		}

		// Unclaimed: hand the provider a relative duration instead.
		hours := int((expire - now.Unix() + 3599) / 3600)
		if hours < 1 {
			hours = 1
		}
		return upstream.MintPayload{DiscordID: GenerateDiscordID(), KeyHours: &hours}, nil
	}

	// No mode supplied: short trial key, four hours from first use.
	hours := 4
	payload := upstream.MintPayload{DiscordID: identity, KeyHours: &hours}
	if payload.DiscordID == "" {
		payload.DiscordID = GenerateDiscordID()
	}
	return payload, nil
}

// GenerateDiscordID returns a random 17-19 digit numeric string. The first
// digit is never '0' so the value survives numeric round-trips.
func GenerateDiscordID() string {
	length := 17 + rand.Intn(3)

	var b strings.Builder
	b.Grow(length)
	b.WriteByte(byte('1' + rand.Intn(9)))
	for i := 1; i < length; i++ {
		b.WriteByte(byte('0' + rand.Intn(10)))
	}

	return b.String()
}

// CreateKeyResult wraps the provider response with the identity it was
// minted under.
type CreateKeyResult struct {
	OK            bool                 `json:"ok"`
	DiscordID     string               `json:"discord_id"`
	LuarmorStatus int                  `json:"luarmor_status"`
	LuarmorData   *upstream.MintResult `json:"luarmor_data"`
}

func (s *LicenseService) CreateKey(ctx context.Context, req CreateKeyRequest) (*CreateKeyResult, error) {
	payload, err := ResolveMintPayload(req, time.Now())
	if err != nil {
		return nil, err
	}

	result, uerr := s.minter.CreateKey(ctx, payload)
	if uerr != nil {
		return nil, uerr
	}

	return &CreateKeyResult{
		OK:            true,
		DiscordID:     payload.DiscordID,
		LuarmorStatus: result.Status,
		LuarmorData:   result,
	}, nil
}

// KeyDetailsResult is the stable get-user-key response shape.
type KeyDetailsResult struct {
	OK              bool   `json:"ok"`
	UserKey         string `json:"user_key"`
	Status          string `json:"status"`
	LastReset       int64  `json:"last_reset"`
	AuthExpire      int64  `json:"auth_expire"`
	TotalExecutions int64  `json:"total_executions"`
}

func (s *LicenseService) GetUserKey(ctx context.Context, userKey string) (*KeyDetailsResult, error) {
	key, err := sanitizeUserKey(userKey)
	if err != nil {
		return nil, err
	}

	details, uerr := s.minter.GetUser(ctx, key)
	if uerr != nil {
		return nil, uerr
	}

	return &KeyDetailsResult{
		OK:              true,
		UserKey:         details.UserKey,
		Status:          details.Status,
		LastReset:       details.LastReset,
		AuthExpire:      details.AuthExpire,
		TotalExecutions: details.TotalExecutions,
	}, nil
}

// ResetHWIDResult carries the provider outcome plus the caller's remaining
// token count after a successful reset.
type ResetHWIDResult struct {
	OK                  bool   `json:"ok"`
	Success             bool   `json:"success"`
	Message             string `json:"message,omitempty"`
	RemainingResetToken *int   `json:"remainingResetToken,omitempty"`
}

// ResetHWID checks the caller's token balance before touching the provider
// and consumes a token only when the provider reports success.
func (s *LicenseService) ResetHWID(ctx context.Context, userID uuid.UUID, userKey string, force bool) (*ResetHWIDResult, error) {
	key, err := sanitizeUserKey(userKey)
	if err != nil {
		return nil, err
	}

	user, dbErr := s.users.FindByID(ctx, userID)
	if dbErr != nil {
		logger.LogEvent(logrus.ErrorLevel, "reset-hwid user lookup failed", logrus.Fields{
			"user_id": userID.String(),
			"error":   dbErr.Error(),
		})
		return nil, internal("Internal server error")
	}
	if user == nil {
		return nil, notFound("User not found")
	}

	if user.ResetToken < 1 {
		return nil, badRequest("Not enough reset tokens. You need at least 1 reset token to reset HWID.")
	}

	result, uerr := s.minter.ResetHWID(ctx, key, force)
	if uerr != nil {
		return nil, uerr
	}

	if !result.Success {
		// Transport succeeded but the provider refused; no token is consumed.
		return &ResetHWIDResult{OK: true, Success: false, Message: result.Message}, nil
	}

	remaining, consumed, dbErr := s.users.ConsumeResetToken(ctx, userID)
	if dbErr != nil {
		logger.LogEvent(logrus.ErrorLevel, "reset token decrement failed", logrus.Fields{
			"user_id": userID.String(),
			"error":   dbErr.Error(),
		})
		return nil, internal("Failed to update reset token")
	}
	if !consumed {
		// Raced to zero between the check and the decrement.
		return nil, badRequest("Not enough reset tokens. You need at least 1 reset token to reset HWID.")
	}

	return &ResetHWIDResult{
		OK:                  true,
		Success:             true,
		Message:             result.Message,
		RemainingResetToken: &remaining,
	}, nil
}

func sanitizeUserKey(userKey string) (string, error) {
	key := strings.TrimSpace(userKey)
	if key == "" {
		return "", badRequest("Invalid user_key parameter")
	}
	if len(key) > maxUserKeyLength {
		return "", badRequest("Invalid user_key format")
	}
	return key, nil
}
