package api

import (
	"net/http"
	"time"

	"github.com/sfrosal/portfolio-api/config"
)

const sessionCookieName = "token"

// cookiePolicy is the one coherent cookie configuration, applied identically
// when setting and clearing. Production serves a cross-origin admin UI, so
// the cookie is Secure + SameSite=None there and Lax in development.
type cookiePolicy struct {
	secure   bool
	sameSite http.SameSite
	ttl      time.Duration
}

func newCookiePolicy(cfg map[string]string, ttl time.Duration) cookiePolicy {
	production := config.GetString(cfg, "APP_ENV", "development") == "production"
	policy := cookiePolicy{secure: production, sameSite: http.SameSiteLaxMode, ttl: ttl}
	if production {
		policy.sameSite = http.SameSiteNoneMode
	}
	return policy
}

func (p cookiePolicy) set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: p.sameSite,
		MaxAge:   int(p.ttl.Seconds()),
	})
}

func (p cookiePolicy) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: p.sameSite,
		MaxAge:   -1,
	})
}
