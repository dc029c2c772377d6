package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveTrustOrder(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.9:51234"
	req.Header.Set("X-Real-Ip", "4.4.4.4")
	req.Header.Set("X-Forwarded-For", "3.3.3.3, 10.0.0.1")
	req.Header.Set("True-Client-Ip", "2.2.2.2")
	req.Header.Set("Cf-Connecting-Ip", "1.1.1.1")

	d := Resolve(req, "5.5.5.5")
	assert.Equal(t, "1.1.1.1", d.ChosenIP)

	req.Header.Del("Cf-Connecting-Ip")
	assert.Equal(t, "2.2.2.2", Resolve(req, "5.5.5.5").ChosenIP)

	req.Header.Del("True-Client-Ip")
	assert.Equal(t, "3.3.3.3", Resolve(req, "5.5.5.5").ChosenIP)

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "4.4.4.4", Resolve(req, "5.5.5.5").ChosenIP)

	req.Header.Del("X-Real-Ip")
	assert.Equal(t, "5.5.5.5", Resolve(req, "5.5.5.5").ChosenIP)

	assert.Equal(t, "10.0.0.9:51234", Resolve(req, "").ChosenIP)
}

func TestResolveNoHeaders(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = ""

	d := Resolve(req, "")
	assert.Equal(t, "unknown", d.ChosenIP)
	assert.Empty(t, d.XForwardedFor)
}

func TestResolveForwardedForWhitespace(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", " 7.7.7.7 ,, 10.0.0.2 ")

	d := Resolve(req, "")
	assert.Equal(t, "7.7.7.7", d.ChosenIP)
	assert.Equal(t, []string{"7.7.7.7", "10.0.0.2"}, d.XForwardedFor)
}

func TestResolveNilRequest(t *testing.T) {
	assert.Equal(t, "unknown", Resolve(nil, "1.2.3.4").ChosenIP)
}
