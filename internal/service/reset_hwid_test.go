package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xjinkx/license-gateway/internal/models"
	"github.com/xjinkx/license-gateway/internal/upstream"
)

func TestResetHWIDZeroBalanceSkipsProvider(t *testing.T) {
	minter := &fakeMinter{resetResult: &upstream.ResetResult{Success: true}}
	users := &fakeUserStore{user: &models.User{ID: uuid.New(), ResetToken: 0}}
	svc := NewLicenseService(minter, users)

	_, err := svc.ResetHWID(context.Background(), users.user.ID, "KEY123", false)

	require.Error(t, err)
	serr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, serr.Status)
	assert.Equal(t, "Not enough reset tokens. You need at least 1 reset token to reset HWID.", serr.Message)
	assert.Zero(t, minter.resetCalls, "provider must not be called with zero balance")
	assert.Zero(t, users.consumeCalls)
}

func TestResetHWIDProviderRefusalKeepsToken(t *testing.T) {
	minter := &fakeMinter{resetResult: &upstream.ResetResult{Success: false, Message: "key is on cooldown"}}
	users := &fakeUserStore{user: &models.User{ID: uuid.New(), ResetToken: 3}}
	svc := NewLicenseService(minter, users)

	result, err := svc.ResetHWID(context.Background(), users.user.ID, "KEY123", false)

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.False(t, result.Success)
	assert.Equal(t, "key is on cooldown", result.Message)
	assert.Zero(t, users.consumeCalls, "refused reset must not consume a token")
	assert.Nil(t, result.RemainingResetToken)
}

func TestResetHWIDTransportFailureKeepsToken(t *testing.T) {
	minter := &fakeMinter{resetErr: upstream.NewTransportError("License service")}
	users := &fakeUserStore{user: &models.User{ID: uuid.New(), ResetToken: 2}}
	svc := NewLicenseService(minter, users)

	_, err := svc.ResetHWID(context.Background(), users.user.ID, "KEY123", false)

	require.Error(t, err)
	assert.Zero(t, users.consumeCalls)
}

func TestResetHWIDSuccessConsumesOneToken(t *testing.T) {
	minter := &fakeMinter{resetResult: &upstream.ResetResult{Success: true, Message: "HWID reset"}}
	users := &fakeUserStore{
		user:             &models.User{ID: uuid.New(), ResetToken: 3},
		consumeOK:        true,
		consumeRemaining: 2,
	}
	svc := NewLicenseService(minter, users)

	result, err := svc.ResetHWID(context.Background(), users.user.ID, "KEY123", true)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, minter.resetCalls)
	assert.Equal(t, 1, users.consumeCalls)
	require.NotNil(t, result.RemainingResetToken)
	// The count comes from the conditional update itself, not a pre-call read.
	assert.Equal(t, 2, *result.RemainingResetToken)
}

func TestResetHWIDRacedToZero(t *testing.T) {
	minter := &fakeMinter{resetResult: &upstream.ResetResult{Success: true}}
	users := &fakeUserStore{
		user:      &models.User{ID: uuid.New(), ResetToken: 1},
		consumeOK: false, // another reset drained the balance mid-flight
	}
	svc := NewLicenseService(minter, users)

	_, err := svc.ResetHWID(context.Background(), users.user.ID, "KEY123", false)

	require.Error(t, err)
	serr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, serr.Status)
}
