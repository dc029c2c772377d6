package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/xjinkx/license-gateway/internal/logger"
)

// doJSON issues req on client, enforces the context deadline, and decodes a
// JSON body into out (when out is non-nil). Connection failures and timeouts
// come back as KindTransport; HTML-instead-of-JSON as KindMalformed. The
// response status and raw body are returned for provider-specific handling.
func doJSON(client *http.Client, req *http.Request, service string, out interface{}) (int, []byte, *Error) {
	resp, err := client.Do(req)
	if err != nil {
		logger.LogEvent(logrus.ErrorLevel, "upstream call failed", logrus.Fields{
			"service": service,
			"url":     req.URL.String(),
			"error":   err.Error(),
			"timeout": errors.Is(err, context.DeadlineExceeded),
		})
		return 0, nil, NewTransportError(service)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, NewTransportError(service)
	}

	if IsHTMLBody(body) {
		logger.LogEvent(logrus.ErrorLevel, "upstream returned markup instead of JSON", logrus.Fields{
			"service": service,
			"status":  resp.StatusCode,
		})
		return resp.StatusCode, body, NewErrorPage(service)
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			logger.LogEvent(logrus.ErrorLevel, "upstream response did not decode", logrus.Fields{
				"service": service,
				"status":  resp.StatusCode,
				"error":   err.Error(),
			})
			return resp.StatusCode, body, NewMalformed(service)
		}
	}

	return resp.StatusCode, body, nil
}

func newJSONRequest(ctx context.Context, method, url string, payload interface{}) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// providerMessage pulls a display message out of a provider error body.
// Accepts {"message": "..."}, {"error": "..."}, or a bare string body.
func providerMessage(body []byte) string {
	var obj struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &obj); err == nil {
		if obj.Message != "" {
			return obj.Message
		}
		if obj.Error != "" {
			return obj.Error
		}
	}

	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return s
	}

	return ""
}
