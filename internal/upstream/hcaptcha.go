package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xjinkx/license-gateway/internal/logger"
)

// HcaptchaVerifier checks browser captcha tokens. When no secret is
// configured verification is skipped and every token passes.
type HcaptchaVerifier struct {
	secret    string
	verifyURL string
	http      *http.Client
}

func NewHcaptchaVerifier(secret, verifyURL string) *HcaptchaVerifier {
	return &HcaptchaVerifier{
		secret:    secret,
		verifyURL: verifyURL,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *HcaptchaVerifier) Enabled() bool {
	return v.secret != ""
}

func (v *HcaptchaVerifier) Verify(ctx context.Context, token string) bool {
	if !v.Enabled() {
		return true
	}

	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.http.Do(req)
	if err != nil {
		logger.LogEvent(logrus.ErrorLevel, "hcaptcha verification failed", logrus.Fields{
			"error": err.Error(),
		})
		return false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false
	}

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return false
	}

	return result.Success
}
