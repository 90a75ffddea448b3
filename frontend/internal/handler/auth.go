package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	frontend_domain "github.com/circle-dev/circle/frontend/internal/domain"
	"github.com/circle-dev/circle/frontend/internal/middleware"
	"github.com/circle-dev/circle/frontend/internal/session"
	"github.com/circle-dev/circle/shared/domain"
	"github.com/circle-dev/circle/shared/logger"
)

// LoginGetHandler lists the feed's users to sign in as. There are no
// passwords: the feed API has no authentication of its own.
func (h *Handler) LoginGetHandler(w http.ResponseWriter, r *http.Request) {
	page := frontend_domain.LoginPageData{Next: safeNext(r.URL.Query().Get("next"))}

	users, err := h.APIClient.GetUsers(r.Context())
	if err != nil {
		logger.Log.Error("during users API call", "error", err)
		page.Unavailable = true
	}
	page.Users = users

	h.renderTemplateWithStatus(w, r, "login.html", page, http.StatusOK, users)
}

func (h *Handler) LoginPostHandler(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.FormValue("next"))
	back := "/login"
	if next != "" {
		back += "?next=" + url.QueryEscape(next)
	}

	userId, err := strconv.ParseInt(r.FormValue("user_id"), 10, 64)
	if err != nil || userId <= 0 {
		h.redirectWithFlash(w, r, back, flashCookieError, "Pick a user to sign in as.")
		return
	}

	users, err := h.APIClient.GetUsers(r.Context())
	if err != nil {
		logger.Log.Error("during users API call", "error", err)
		h.redirectWithFlash(w, r, back, flashCookieError, "Internal error: feed service unavailable.")
		return
	}
	user, ok := domain.FindUser(users, userId)
	if !ok {
		h.redirectWithFlash(w, r, back, flashCookieError, "User not found.")
		return
	}

	token, err := h.Jwt.NewToken(user.Id)
	if err != nil {
		h.redirectWithFlash(w, r, back, flashCookieError, "Internal error: could not sign in.")
		return
	}
	middleware.SetAccessToken(w, token, int(h.Jwt.TTL().Seconds()), h.Public.SecureCookies)
	// views loaded for the previous identity must not be reused
	session.FromContext(r.Context()).Reset()

	logger.Log.Info("user signed in", "user_id", user.Id)
	if next == "" {
		h.redirectWithFlash(w, r, "/login", flashCookieSuccess, "Signed in as "+user.FullName+".")
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	middleware.ClearAccessToken(w, h.Public.SecureCookies)
	session.FromContext(r.Context()).Reset()
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// safeNext accepts only local absolute paths, so the login form cannot be
// used as an open redirect.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return ""
	}
	return next
}
