package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/xjinkx/license-gateway/internal/service"
	"github.com/xjinkx/license-gateway/internal/upstream"
)

type stubMinter struct {
	mintCalls int
}

func (s *stubMinter) CreateKey(ctx context.Context, payload upstream.MintPayload) (*upstream.MintResult, *upstream.Error) {
	s.mintCalls++
	return &upstream.MintResult{Success: true, UserKey: "KEY123", Status: 200}, nil
}

func (s *stubMinter) GetUser(ctx context.Context, userKey string) (*upstream.KeyDetails, *upstream.Error) {
	return &upstream.KeyDetails{UserKey: userKey}, nil
}

func (s *stubMinter) ResetHWID(ctx context.Context, userKey string, force bool) (*upstream.ResetResult, *upstream.Error) {
	return &upstream.ResetResult{Success: true}, nil
}

func newCreateKeyRouter(minter service.KeyMinter, captcha *upstream.HcaptchaVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewKeyHandler(service.NewLicenseService(minter, nil), captcha)
	r.POST("/create-key", h.CreateKey)
	return r
}

func postCreateKey(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/create-key", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateKeyRequiresCaptchaTokenWhenConfigured(t *testing.T) {
	minter := &stubMinter{}
	captcha := upstream.NewHcaptchaVerifier("configured-secret", "http://127.0.0.1:1/siteverify")
	r := newCreateKeyRouter(minter, captcha)

	w := postCreateKey(r, `{"key_days":7}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"hCaptcha token is required"}`, w.Body.String())
	assert.Zero(t, minter.mintCalls, "no mint without a captcha token")
}

func TestCreateKeyPassesWithoutCaptchaWhenUnconfigured(t *testing.T) {
	minter := &stubMinter{}
	captcha := upstream.NewHcaptchaVerifier("", "")
	r := newCreateKeyRouter(minter, captcha)

	w := postCreateKey(r, `{"key_days":7}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, minter.mintCalls)
}
