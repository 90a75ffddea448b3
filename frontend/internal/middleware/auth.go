package middleware

import (
	"context"
	"net/http"

	"github.com/circle-dev/circle/shared/domain"
	jwt_internal "github.com/circle-dev/circle/shared/jwt"
	"github.com/circle-dev/circle/shared/logger"
)

const AccessTokenCookie = "accessToken"

type identityKey int

const userIdKey identityKey = 0

// Identity reads the signed-in user id from the access token cookie.
// A missing or invalid token leaves the request anonymous; the post view
// reports that as unauthenticated itself.
type Identity struct {
	jwtService    jwt_internal.JwtService
	secureCookies bool
}

func NewIdentity(jwtService jwt_internal.JwtService, secureCookies bool) *Identity {
	return &Identity{
		jwtService:    jwtService,
		secureCookies: secureCookies,
	}
}

// OptionalAuth populates the user id in the request context when the token is valid.
func (a *Identity) OptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AccessTokenCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			userId, err := a.jwtService.DecodeUserId(cookie.Value)
			if err != nil {
				logger.Log.Debug("ignoring invalid access token", "path", r.URL.Path, "error", err)
				ClearAccessToken(w, a.secureCookies)
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), userIdKey, userId)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUserId returns the signed-in user id, or 0.
func CurrentUserId(r *http.Request) domain.UserId {
	id, _ := r.Context().Value(userIdKey).(domain.UserId)
	return id
}

func SetAccessToken(w http.ResponseWriter, token string, maxAge int, secureCookies bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearAccessToken(w http.ResponseWriter, secureCookies bool) {
	SetAccessToken(w, "", -1, secureCookies)
}
