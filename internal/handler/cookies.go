package handler

import (
	"net/http"
	"time"

	"go-videotube/internal/middleware"
	"go-videotube/internal/model"
)

// CookieOptions controls the attributes of the session cookies.
type CookieOptions struct {
	Secure     bool
	SameSite   http.SameSite
	Domain     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (o CookieOptions) setTokens(w http.ResponseWriter, accessToken string, refreshToken string) {
	http.SetCookie(w, o.cookie(middleware.AccessTokenCookie, accessToken, int(o.AccessTTL.Seconds())))
	http.SetCookie(w, o.cookie(middleware.RefreshTokenCookie, refreshToken, int(o.RefreshTTL.Seconds())))
}

func (o CookieOptions) setPair(w http.ResponseWriter, pair model.TokenPair) {
	o.setTokens(w, pair.AccessToken, pair.RefreshToken)
}

func (o CookieOptions) clear(w http.ResponseWriter) {
	http.SetCookie(w, o.cookie(middleware.AccessTokenCookie, "", -1))
	http.SetCookie(w, o.cookie(middleware.RefreshTokenCookie, "", -1))
}

func (o CookieOptions) cookie(name string, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   o.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	}
}
