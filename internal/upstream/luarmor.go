package upstream

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

const luarmorService = "License service"

// LuarmorClient talks to the licensing provider that mints and tracks keys.
type LuarmorClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
}

func NewLuarmorClient(baseURL, apiKey string, timeout time.Duration) *LuarmorClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &LuarmorClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

// MintPayload is the provider-facing key creation request. Exactly one of
// KeyDays/KeyHours/AuthExpire is set; callers go through the license service
// which resolves the input mode first.
type MintPayload struct {
	DiscordID  string `json:"discord_id"`
	KeyDays    *int   `json:"key_days,omitempty"`
	KeyHours   *int   `json:"key_hours,omitempty"`
	AuthExpire *int64 `json:"auth_expire,omitempty"`
}

// MintResult is the provider's answer to a key creation call.
type MintResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserKey string `json:"user_key"`
	Status  int    `json:"-"`
}

func (c *LuarmorClient) CreateKey(ctx context.Context, payload MintPayload) (*MintResult, *Error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := newJSONRequest(ctx, http.MethodPost, c.baseURL+"/users", payload)
	if err != nil {
		return nil, NewTransportError(luarmorService)
	}
	req.Header.Set("Authorization", c.apiKey)

	var result MintResult
	status, body, uerr := doJSON(c.http, req, luarmorService, &result)
	if uerr != nil {
		return nil, uerr
	}

	if status >= 400 {
		return nil, NormalizeStatus(status, providerMessage(body))
	}

	result.Status = status
	return &result, nil
}

// KeyDetails is the provider's record of one minted key.
type KeyDetails struct {
	UserKey         string `json:"user_key"`
	Status          string `json:"status"`
	LastReset       int64  `json:"last_reset"`
	AuthExpire      int64  `json:"auth_expire"`
	TotalExecutions int64  `json:"total_executions"`
}

// GetUser looks a key up. Read-only; repeated calls with no intervening
// reset return identical data.
func (c *LuarmorClient) GetUser(ctx context.Context, userKey string) (*KeyDetails, *Error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/users?user_key=" + url.QueryEscape(userKey)
	req, err := newJSONRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewTransportError(luarmorService)
	}
	req.Header.Set("Authorization", c.apiKey)

	var result struct {
		Success bool         `json:"success"`
		Message string       `json:"message"`
		Users   []KeyDetails `json:"users"`
	}

	status, body, uerr := doJSON(c.http, req, luarmorService, &result)
	if uerr != nil {
		return nil, uerr
	}

	if status >= 400 {
		return nil, NormalizeStatus(status, providerMessage(body))
	}

	if len(result.Users) == 0 {
		return nil, &Error{
			Kind:       KindUpstream,
			StatusCode: http.StatusNotFound,
			Message:    "Key not found",
		}
	}

	return &result.Users[0], nil
}

// ResetResult distinguishes transport success from provider-level success;
// callers must check Success before consuming a reset token.
type ResetResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (c *LuarmorClient) ResetHWID(ctx context.Context, userKey string, force bool) (*ResetResult, *Error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload := map[string]interface{}{
		"user_key": userKey,
		"force":    force,
	}

	req, err := newJSONRequest(ctx, http.MethodPost, c.baseURL+"/users/resetkey", payload)
	if err != nil {
		return nil, NewTransportError(luarmorService)
	}
	req.Header.Set("Authorization", c.apiKey)

	var result ResetResult
	status, body, uerr := doJSON(c.http, req, luarmorService, &result)
	if uerr != nil {
		return nil, uerr
	}

	if status >= 400 {
		return nil, NormalizeStatus(status, providerMessage(body))
	}

	return &result, nil
}
