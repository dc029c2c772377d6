package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xjinkx/license-gateway/internal/upstream"
)

var testNow = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestResolveMintPayloadRelativeDays(t *testing.T) {
	payload, err := ResolveMintPayload(CreateKeyRequest{
		KeyDays:      intPtr(7),
		DurationType: "days",
	}, testNow)

	require.NoError(t, err)
	require.NotNil(t, payload.KeyDays)
	assert.Equal(t, 7, *payload.KeyDays)
	assert.Nil(t, payload.KeyHours)
	assert.Nil(t, payload.AuthExpire)
	assert.NotEmpty(t, payload.DiscordID)
}

func TestResolveMintPayloadRelativeHours(t *testing.T) {
	payload, err := ResolveMintPayload(CreateKeyRequest{
		KeyDays:      intPtr(12),
		DurationType: "hours",
	}, testNow)

	require.NoError(t, err)
	require.NotNil(t, payload.KeyHours)
	assert.Equal(t, 12, *payload.KeyHours)
	assert.Nil(t, payload.KeyDays)
}

func TestResolveMintPayloadRejectsAmbiguousModes(t *testing.T) {
	_, err := ResolveMintPayload(CreateKeyRequest{
		KeyDays:    intPtr(7),
		AuthExpire: int64Ptr(testNow.Unix() + 3600),
	}, testNow)

	require.Error(t, err)
	serr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, 400, serr.Status)
}

func TestResolveMintPayloadRejectsBadInput(t *testing.T) {
	_, err := ResolveMintPayload(CreateKeyRequest{KeyDays: intPtr(0)}, testNow)
	assert.Error(t, err)

	_, err = ResolveMintPayload(CreateKeyRequest{KeyDays: intPtr(7), DurationType: "weeks"}, testNow)
	assert.Error(t, err)

	_, err = ResolveMintPayload(CreateKeyRequest{AuthExpire: int64Ptr(testNow.Unix() - 10)}, testNow)
	assert.Error(t, err)
}

func TestResolveMintPayloadClaimedAbsoluteExpiry(t *testing.T) {
	expire := testNow.Unix() + 86400
	payload, err := ResolveMintPayload(CreateKeyRequest{
		AuthExpire: int64Ptr(expire),
		Identifier: "987654321098765432",
	}, testNow)

	require.NoError(t, err)
	require.NotNil(t, payload.AuthExpire)
	assert.Equal(t, expire, *payload.AuthExpire)
	assert.Equal(t, "987654321098765432", payload.DiscordID)
	assert.Nil(t, payload.KeyDays)
	assert.Nil(t, payload.KeyHours)
}

func TestResolveMintPayloadUnclaimedAbsoluteBecomesDuration(t *testing.T) {
	// 90 minutes out rounds up to 2 hours.
	payload, err := ResolveMintPayload(CreateKeyRequest{
		AuthExpire: int64Ptr(testNow.Unix() + 90*60),
	}, testNow)

	require.NoError(t, err)
	assert.Nil(t, payload.AuthExpire)
	require.NotNil(t, payload.KeyHours)
	assert.Equal(t, 2, *payload.KeyHours)
	assert.NotEmpty(t, payload.DiscordID)
}

func TestResolveMintPayloadDefaultTrialKey(t *testing.T) {
	payload, err := ResolveMintPayload(CreateKeyRequest{}, testNow)

	require.NoError(t, err)
	require.NotNil(t, payload.KeyHours)
	assert.Equal(t, 4, *payload.KeyHours)
	assert.NotEmpty(t, payload.DiscordID)
}

func TestGenerateDiscordID(t *testing.T) {
	for i := 0; i < 200; i++ {
		id := GenerateDiscordID()
		assert.GreaterOrEqual(t, len(id), 17)
		assert.LessOrEqual(t, len(id), 19)
		assert.NotEqual(t, byte('0'), id[0])
		assert.Equal(t, "", strings.Trim(id, "0123456789"), "id %q must be numeric", id)
	}
}

func TestSanitizeUserKey(t *testing.T) {
	key, err := sanitizeUserKey("  ABC123  ")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", key)

	_, err = sanitizeUserKey("   ")
	assert.Error(t, err)

	_, err = sanitizeUserKey(strings.Repeat("x", 201))
	assert.Error(t, err)
}

// Compile-time check that the provider client satisfies the service's view.
var _ KeyMinter = (*upstream.LuarmorClient)(nil)
