package clientip

import (
	"net/http"
	"strings"
)

// Details holds every proxy-chain address observed on a request, plus the
// single address chosen by trust order. Useful for rejection logs.
type Details struct {
	ChosenIP       string
	RemoteAddress  string
	XForwardedFor  []string
	XRealIP        string
	CFConnectingIP string
	TrueClientIP   string
}

// Resolve picks one client address from the proxy-header chain. Trust order:
// cf-connecting-ip, true-client-ip, first x-forwarded-for entry, x-real-ip,
// the framework's resolved peer, the raw socket address, then "unknown".
// frameworkIP is whatever the HTTP framework already resolved (may be empty).
func Resolve(r *http.Request, frameworkIP string) Details {
	d := Details{ChosenIP: "unknown"}
	if r == nil {
		return d
	}

	h := r.Header
	d.CFConnectingIP = h.Get("Cf-Connecting-Ip")
	d.TrueClientIP = h.Get("True-Client-Ip")
	d.XRealIP = h.Get("X-Real-Ip")
	d.RemoteAddress = r.RemoteAddr

	for _, part := range strings.Split(h.Get("X-Forwarded-For"), ",") {
		if part = strings.TrimSpace(part); part != "" {
			d.XForwardedFor = append(d.XForwardedFor, part)
		}
	}

	switch {
	case d.CFConnectingIP != "":
		d.ChosenIP = d.CFConnectingIP
	case d.TrueClientIP != "":
		d.ChosenIP = d.TrueClientIP
	case len(d.XForwardedFor) > 0:
		d.ChosenIP = d.XForwardedFor[0]
	case d.XRealIP != "":
		d.ChosenIP = d.XRealIP
	case frameworkIP != "":
		d.ChosenIP = frameworkIP
	case r.RemoteAddr != "":
		d.ChosenIP = r.RemoteAddr
	}

	return d
}
