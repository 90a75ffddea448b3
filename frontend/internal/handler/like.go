package handler

import (
	"net/http"

	"github.com/circle-dev/circle/frontend/internal/likes"
	"github.com/circle-dev/circle/frontend/internal/session"
	"github.com/circle-dev/circle/shared/api"
	"github.com/circle-dev/circle/shared/domain"
	internal_errors "github.com/circle-dev/circle/shared/errors"
	"github.com/circle-dev/circle/shared/utils"
)

// LikePostHandler toggles the like of a thread for this browser session.
// Likes are local: nothing is sent to the feed API, and the session's post
// view is left alone so a draft on another thread survives.
func (h *Handler) LikePostHandler(w http.ResponseWriter, r *http.Request) {
	threadId, ok := parseThreadId(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	session.FromContext(r.Context()).Likes.Toggle(threadId)
	likeToggles.Inc()
	http.Redirect(w, r, threadURL(threadId)+"#post", http.StatusSeeOther)
}

func (h *Handler) LikeAPIGetHandler(w http.ResponseWriter, r *http.Request) {
	threadId, ok := parseThreadId(r)
	if !ok {
		utils.WriteErrorAndStatusCode(w, errInvalidThreadId)
		return
	}
	sess := session.FromContext(r.Context())
	utils.WriteJSON(w, http.StatusOK, likeResponse(threadId, sess.Likes.Get(threadId)))
}

func (h *Handler) LikeAPIPostHandler(w http.ResponseWriter, r *http.Request) {
	threadId, ok := parseThreadId(r)
	if !ok {
		utils.WriteErrorAndStatusCode(w, errInvalidThreadId)
		return
	}
	entry := session.FromContext(r.Context()).Likes.Toggle(threadId)
	likeToggles.Inc()
	utils.WriteJSON(w, http.StatusOK, likeResponse(threadId, entry))
}

var errInvalidThreadId = &internal_errors.ErrorWithStatusCode{Message: "invalid thread id", StatusCode: http.StatusBadRequest}

func likeResponse(threadId domain.ThreadId, e likes.Entry) api.LikeResponse {
	return api.LikeResponse{ThreadId: threadId, Count: e.Count, Liked: e.Liked}
}
