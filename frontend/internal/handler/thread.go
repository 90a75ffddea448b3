package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	frontend_domain "github.com/circle-dev/circle/frontend/internal/domain"
	"github.com/circle-dev/circle/frontend/internal/middleware"
	"github.com/circle-dev/circle/frontend/internal/postdetail"
	"github.com/circle-dev/circle/frontend/internal/session"
	"github.com/circle-dev/circle/shared/domain"
	"github.com/circle-dev/circle/shared/logger"
)

func threadURL(threadId domain.ThreadId) string {
	return fmt.Sprintf("/threads/%d", threadId)
}

// ThreadGetHandler renders the post detail page. The session keeps the view
// between requests, so the feed API is only queried on the first visit of a
// thread, after a failed visit, or when ?refresh=1 asks for a new visit.
func (h *Handler) ThreadGetHandler(w http.ResponseWriter, r *http.Request) {
	threadId, ok := parseThreadId(r)
	if !ok {
		page := frontend_domain.ThreadPageData{LoadError: postdetail.ErrThreadNotFound.Message}
		h.renderTemplateWithStatus(w, r, "thread.html", page, http.StatusNotFound, nil)
		return
	}

	sess := session.FromContext(r.Context())
	userId := middleware.CurrentUserId(r)
	view := h.view(sess, threadId, r.URL.Query().Get("refresh") == "1")

	err := view.Load(r.Context(), postdetail.UserId(userId))
	threadLoads.WithLabelValues(outcome(err)).Inc()

	status := http.StatusOK
	if err != nil {
		status = postdetail.KindOf(err).HTTPStatus()
	}
	snap := view.Snapshot()
	h.renderTemplateWithStatus(w, r, "thread.html", h.threadPage(snap, userId, time.Now()), status, snap.Users)
}

// ThreadLookupHandler sends "open post" form submissions (?id=N) to the post page.
func (h *Handler) ThreadLookupHandler(w http.ResponseWriter, r *http.Request) {
	var threadId domain.ThreadId
	if _, err := fmt.Sscan(r.URL.Query().Get("id"), &threadId); err != nil || threadId <= 0 {
		h.redirectWithFlash(w, r, "/login", flashCookieError, "Enter a valid post number.")
		return
	}
	http.Redirect(w, r, threadURL(threadId), http.StatusSeeOther)
}

// readyView returns the loaded view of the request's thread. When the view
// cannot be loaded it redirects to the post page, which shows why, and
// returns nil.
func (h *Handler) readyView(w http.ResponseWriter, r *http.Request) (*postdetail.View, domain.ThreadId) {
	threadId, ok := parseThreadId(r)
	if !ok {
		http.NotFound(w, r)
		return nil, 0
	}

	view := h.view(session.FromContext(r.Context()), threadId, false)
	if err := view.Load(r.Context(), postdetail.UserId(middleware.CurrentUserId(r))); err != nil {
		http.Redirect(w, r, threadURL(threadId), http.StatusSeeOther)
		return nil, threadId
	}
	return view, threadId
}

// saveDraft copies the composer form into the view: the text when the form
// carries one, and the picked image when there is one. The returned error is
// the image rejection, if any.
func saveDraft(ctx context.Context, view *postdetail.View, r *http.Request) error {
	text := r.FormValue("text")
	if r.Form.Has("text") {
		if err := view.SetDraftText(ctx, text); err != nil {
			return err
		}
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	if err != nil {
		logger.Log.Warn("unreadable image upload", "path", r.URL.Path, "error", err)
		return nil
	}
	defer file.Close()

	return view.AttachImage(ctx, postdetail.Upload{
		Filename:  header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Body:      file,
	})
}

// ImagePostHandler attaches the picked image to the draft.
func (h *Handler) ImagePostHandler(w http.ResponseWriter, r *http.Request) {
	view, threadId := h.readyView(w, r)
	if view == nil {
		return
	}
	_ = saveDraft(r.Context(), view, r)
	http.Redirect(w, r, threadURL(threadId)+"#composer", http.StatusSeeOther)
}

func (h *Handler) ImageDiscardHandler(w http.ResponseWriter, r *http.Request) {
	view, threadId := h.readyView(w, r)
	if view == nil {
		return
	}
	ctx := r.Context()
	text := r.FormValue("text")
	if r.Form.Has("text") {
		_ = view.SetDraftText(ctx, text)
	}
	_ = view.DiscardImage(ctx)
	http.Redirect(w, r, threadURL(threadId)+"#composer", http.StatusSeeOther)
}

// ReplyPostHandler submits the draft. Every outcome redirects back to the post
// page; failures are shown above the composer with the draft kept.
func (h *Handler) ReplyPostHandler(w http.ResponseWriter, r *http.Request) {
	view, threadId := h.readyView(w, r)
	if view == nil {
		return
	}
	ctx := r.Context()
	target := threadURL(threadId) + "#composer"

	if err := saveDraft(ctx, view, r); err != nil {
		replySubmissions.WithLabelValues(outcome(err)).Inc()
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	reply, err := view.Submit(ctx, postdetail.UserId(middleware.CurrentUserId(r)))
	switch {
	case err != nil:
		replySubmissions.WithLabelValues(outcome(err)).Inc()
	case reply == nil:
		replySubmissions.WithLabelValues("empty").Inc()
	default:
		replySubmissions.WithLabelValues("ok").Inc()
		target = fmt.Sprintf("%s#reply-%d", threadURL(threadId), reply.Id)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
