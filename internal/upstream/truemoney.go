package upstream

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const truemoneyService = "Payment service"

// TrueMoneyClient redeems gift vouchers through the Xpluem relay.
type TrueMoneyClient struct {
	baseURL string
	phone   string
	timeout time.Duration
	http    *http.Client
}

func NewTrueMoneyClient(baseURL, phone string, timeout time.Duration) *TrueMoneyClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &TrueMoneyClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		phone:   phone,
		timeout: timeout,
		http: &http.Client{
			Timeout: timeout,
			// The relay serves a certificate that does not verify.
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
	}
}

// ExtractVoucherCode accepts either a bare voucher code or a full gift link
// such as https://gift.truemoney.com/campaign/?v=CODE and returns the code.
// Trailing query parameters and fragments after the code are dropped.
func ExtractVoucherCode(linkOrCode string) string {
	s := strings.TrimSpace(linkOrCode)
	if s == "" {
		return ""
	}

	if idx := strings.Index(s, "?v="); idx >= 0 {
		code := s[idx+len("?v="):]
		code = strings.SplitN(code, "&", 2)[0]
		code = strings.SplitN(code, "#", 2)[0]
		return strings.TrimSpace(code)
	}

	return s
}

// RedeemResult reports a voucher redemption. Amount comes solely from the
// provider response, never from client input.
type RedeemResult struct {
	Amount  float64
	Owner   string
	Message string
}

func (c *TrueMoneyClient) Redeem(ctx context.Context, voucherCode string) (*RedeemResult, *Error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/" + url.PathEscape(voucherCode) + "/" + url.PathEscape(c.phone)
	req, err := newJSONRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewTransportError(truemoneyService)
	}

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			Name   string `json:"name"`
			Amount string `json:"amount"`
		} `json:"data"`
	}

	status, body, uerr := doJSON(c.http, req, truemoneyService, &result)
	if uerr != nil {
		return nil, uerr
	}

	if status >= 500 {
		return nil, NormalizeStatus(status, providerMessage(body))
	}

	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "Voucher redemption failed"
		}
		return nil, &Error{
			Kind:       KindUpstream,
			StatusCode: http.StatusBadRequest,
			Message:    msg,
		}
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(result.Data.Amount), 64)
	if err != nil || amount <= 0 {
		return nil, &Error{
			Kind:       KindMalformed,
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid voucher amount",
		}
	}

	return &RedeemResult{
		Amount:  amount,
		Owner:   result.Data.Name,
		Message: result.Message,
	}, nil
}
