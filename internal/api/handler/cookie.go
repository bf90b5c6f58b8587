package handler

import (
	"net/http"
	"time"

	"github.com/develevate/platform-api/internal/api/middleware"
)

// CookieConfig controls the session cookie set next to the token in the body.
type CookieConfig struct {
	Secure bool
	TTL    time.Duration
}

func (cc CookieConfig) session(token string, now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: cc.sameSite(),
		MaxAge:   int(cc.TTL.Seconds()),
		Expires:  now.Add(cc.TTL),
	}
}

func (cc CookieConfig) cleared() *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: cc.sameSite(),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	}
}

// SameSite=None is only accepted by browsers on secure cookies.
func (cc CookieConfig) sameSite() http.SameSite {
	if cc.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
