package handler

import (
	"html/template"
	"net/http"
	"strconv"
	"sync"

	"github.com/circle-dev/circle/frontend/internal/apiclient"
	"github.com/circle-dev/circle/frontend/internal/markdown"
	"github.com/circle-dev/circle/frontend/internal/postdetail"
	"github.com/circle-dev/circle/frontend/internal/session"
	"github.com/circle-dev/circle/shared/config"
	"github.com/circle-dev/circle/shared/domain"
	"github.com/circle-dev/circle/shared/jwt"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	mu        sync.RWMutex
	templates map[string]*template.Template

	Public        config.Public
	TextProcessor *markdown.TextProcessor
	APIClient     *apiclient.APIClient
	Jwt           jwt.JwtService
}

func New(templates map[string]*template.Template, publicCfg config.Public, textProcessor *markdown.TextProcessor, apiClient *apiclient.APIClient, jwtService jwt.JwtService) *Handler {
	return &Handler{
		templates:     templates,
		Public:        publicCfg,
		TextProcessor: textProcessor,
		APIClient:     apiClient,
		Jwt:           jwtService,
	}
}

// SetTemplates swaps the template set; used by the development reloader.
func (h *Handler) SetTemplates(templates map[string]*template.Template) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.templates = templates
}

func (h *Handler) getTemplate(name string) (*template.Template, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	tmpl, ok := h.templates[name]
	return tmpl, ok
}

// view returns the session's post view for threadId, building a fresh one if needed.
func (h *Handler) view(sess *session.Session, threadId domain.ThreadId, fresh bool) *postdetail.View {
	return sess.View(threadId, fresh, func() *postdetail.View {
		return postdetail.New(threadId, h.APIClient, sess.Likes, postdetail.Options{
			MaxImageSizeBytes: h.Public.MaxImageSizeBytes,
		})
	})
}

func parseThreadId(r *http.Request) (domain.ThreadId, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "thread"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
