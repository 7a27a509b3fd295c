package httpapi

import (
	"net/http"
	"net/netip"
	"strings"
)

// Edge proxies in front of the API, in the order they are trusted.
var (
	clientIPHeaders      = []string{"Fly-Client-IP", "X-Forwarded-For", "X-Real-IP"}
	clientCountryHeaders = []string{"Fly-Client-Country", "CF-IPCountry", "X-Vercel-IP-Country", "CloudFront-Viewer-Country"}
)

const unknownCountry = "ZZ"

type clientOrigin struct {
	IP      string
	Country string
}

// originOf reads the caller address and ISO country code set by the edge.
// IP is empty when nothing parses; Country falls back to ZZ.
func originOf(r *http.Request) clientOrigin {
	o := clientOrigin{Country: unknownCountry}
	for _, h := range clientIPHeaders {
		if ip, ok := parseClientIP(r.Header.Get(h)); ok {
			o.IP = ip
			break
		}
	}
	if o.IP == "" {
		o.IP, _ = parseClientIP(r.RemoteAddr)
	}
	for _, h := range clientCountryHeaders {
		if cc, ok := parseCountry(r.Header.Get(h)); ok {
			o.Country = cc
			break
		}
	}
	return o
}

func (o clientOrigin) logArgs() []any {
	return []any{"client_ip", o.IP, "country_code", o.Country}
}

// parseClientIP takes the first hop of a forwarded list, with or without a port.
func parseClientIP(raw string) (string, bool) {
	first, _, _ := strings.Cut(raw, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return "", false
	}
	if ap, err := netip.ParseAddrPort(first); err == nil {
		return ap.Addr().Unmap().String(), true
	}
	addr, err := netip.ParseAddr(strings.Trim(first, "[]"))
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}

func parseCountry(raw string) (string, bool) {
	cc := strings.ToUpper(strings.TrimSpace(raw))
	if len(cc) != 2 || cc[0] < 'A' || cc[0] > 'Z' || cc[1] < 'A' || cc[1] > 'Z' {
		return "", false
	}
	return cc, true
}
