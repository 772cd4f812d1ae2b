package middleware

import (
	"strconv"
	"strings"
	"time"
)

// SessionCookieName is the cookie that carries the raw session token.
const SessionCookieName = "flux_session"

// SessionMaxAge matches the server-side session lifetime.
const SessionMaxAge = 7 * 24 * time.Hour

// Cookie is a single name/value pair from a Cookie request header.
type Cookie struct {
	Name  string
	Value string
}

// ParseCookies splits a Cookie header into its pairs, in header order.
// Pairs without a name or without a value are dropped. Values are not
// unescaped.
func ParseCookies(header string) []Cookie {
	if header == "" {
		return nil
	}

	var cookies []Cookie
	for _, part := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || name == "" || value == "" {
			continue
		}
		cookies = append(cookies, Cookie{Name: name, Value: value})
	}
	return cookies
}

// CookieValue returns the first value for name in header, or "".
func CookieValue(header, name string) string {
	for _, c := range ParseCookies(header) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// SessionCookie renders the Set-Cookie value for a freshly issued token.
func SessionCookie(token string) string {
	return SessionCookieName + "=" + token +
		"; HttpOnly; Secure; SameSite=Lax; Max-Age=" + strconv.Itoa(int(SessionMaxAge.Seconds())) + "; Path=/"
}

// ClearSessionCookie renders the Set-Cookie value that removes the session cookie.
func ClearSessionCookie() string {
	return SessionCookieName + "=; HttpOnly; Secure; SameSite=Lax; Max-Age=0; Path=/"
}
