package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
)

// setAuthCookies attaches both tokens of pair. Each cookie lives exactly as
// long as the token it carries.
func setAuthCookies(w http.ResponseWriter, pair auth.TokenPair, secure bool) {
	http.SetCookie(w, tokenCookie(common.AccessTokenCookieName, pair.AccessToken, pair.AccessTTL, secure))
	http.SetCookie(w, tokenCookie(common.RefreshTokenCookieName, pair.RefreshToken, pair.RefreshTTL, secure))
}

// clearAuthCookies replaces both cookies with expired empty ones.
func clearAuthCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{common.AccessTokenCookieName, common.RefreshTokenCookieName} {
		c := tokenCookie(name, "", 0, secure)
		c.Expires = time.Unix(0, 0)
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func tokenCookie(name, value string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// tokensFromRequest returns the access and refresh cookie values, empty
// when a cookie is missing.
func tokensFromRequest(r *http.Request) (access, refresh string) {
	if c, err := r.Cookie(common.AccessTokenCookieName); err == nil {
		access = c.Value
	}
	if c, err := r.Cookie(common.RefreshTokenCookieName); err == nil {
		refresh = c.Value
	}
	return access, refresh
}
