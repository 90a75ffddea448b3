package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	frontend_domain "github.com/circle-dev/circle/frontend/internal/domain"
	"github.com/circle-dev/circle/frontend/internal/middleware"
	"github.com/circle-dev/circle/frontend/internal/postdetail"
	"github.com/circle-dev/circle/frontend/internal/sidebar"
	"github.com/circle-dev/circle/shared/domain"
	"github.com/circle-dev/circle/shared/logger"
)

const (
	unknownUser      = "Unknown User"
	acceptedImages   = "image/*"
	emptyContentText = "No content"
)

// TemplateData wraps page-specific data with common template data.
// Templates access page data via .Data and common data via .Common.
type TemplateData struct {
	Data   any
	Common frontend_domain.CommonTemplateData
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	h.renderTemplateWithStatus(w, r, name, data, http.StatusOK, nil)
}

// renderTemplateWithStatus renders into a buffer first so a template error
// never leaves a half-written page behind. users, when given, resolves the
// signed-in user for the page header.
func (h *Handler) renderTemplateWithStatus(w http.ResponseWriter, r *http.Request, name string, data any, status int, users []domain.User) {
	tmpl, ok := h.getTemplate(name)
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", name), http.StatusInternalServerError)
		return
	}

	common := h.initCommonTemplateData(w, r)
	if users != nil && common.UserId != 0 {
		if u, ok := domain.FindUser(users, common.UserId); ok {
			common.User = &u
		}
	}

	wrapped := TemplateData{
		Data:   data,
		Common: common,
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, wrapped); err != nil {
		logger.Log.Error("error executing template", "template", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) initCommonTemplateData(w http.ResponseWriter, r *http.Request) frontend_domain.CommonTemplateData {
	return frontend_domain.CommonTemplateData{
		Error:     h.popFlash(w, r, flashCookieError),
		Success:   h.popFlash(w, r, flashCookieSuccess),
		UserId:    middleware.CurrentUserId(r),
		CSRFToken: middleware.GetCSRFTokenFromContext(r),
		Validation: frontend_domain.ValidationData{
			MaxImageSizeBytes:  h.Public.MaxImageSizeBytes,
			AcceptedImageTypes: acceptedImages,
		},
	}
}

// threadPage turns a view snapshot into the page model.
func (h *Handler) threadPage(snap postdetail.Snapshot, current domain.UserId, now time.Time) frontend_domain.ThreadPageData {
	page := frontend_domain.ThreadPageData{
		ThreadId: snap.ThreadId,
		Loading:  snap.State == postdetail.StateLoading,
	}
	if snap.Err != nil {
		page.LoadError = snap.Err.Message
		return page
	}
	if snap.State != postdetail.StateReady {
		return page
	}

	page.Post = &frontend_domain.Post{
		Id:         snap.Thread.Id,
		Author:     AvatarOf(snap.Author),
		Username:   snap.Author.Username,
		Content:    h.TextProcessor.Render(snap.Thread.Content),
		TimeAgo:    timeAgo(snap.Thread.CreatedAt, now),
		ReplyCount: snap.Thread.ReplyCount,
		LikeCount:  snap.Like.Count,
		Liked:      snap.Like.Liked,
	}

	page.Replies = make([]frontend_domain.Reply, 0, len(snap.Replies))
	for _, reply := range snap.Replies {
		page.Replies = append(page.Replies, frontend_domain.Reply{
			Id:       reply.Id,
			Author:   avatar(reply.Author.FullName, reply.Author.ProfilePicture, ""),
			Content:  h.TextProcessor.Render(reply.Content),
			ImageSrc: safeImageURL(reply.FileURL),
		})
	}

	page.Draft = frontend_domain.Draft{Text: snap.Draft.Text}
	if img := snap.Draft.Image; img != nil {
		page.Draft.ImagePreview = safeImageURL(img.DataURL)
		page.Draft.ImageName = img.Filename
		page.Draft.ImageWidth = img.Width
		page.Draft.ImageHeight = img.Height
	}
	if snap.Draft.Err != nil {
		page.Draft.Error = snap.Draft.Err.Message
	}

	for _, u := range sidebar.Suggest(snap.Users, current, h.Public.SuggestedUsersLimit) {
		page.Suggested = append(page.Suggested, frontend_domain.SuggestedUser{
			Avatar:     AvatarOf(u),
			Username:   u.Username,
			IsFollowed: u.IsFollowed,
		})
	}
	return page
}

// AvatarOf is also exposed to templates as "avatarOf".
func AvatarOf(u domain.User) frontend_domain.Avatar {
	return avatar(u.FullName, u.ProfilePicture, unknownUser)
}

// avatar uses fallback as the name when name is empty. Reply authors pass no
// fallback: a reply without an author name shows none.
func avatar(name, picture, fallback string) frontend_domain.Avatar {
	a := frontend_domain.Avatar{
		Picture: safeImageURL(picture),
		Name:    name,
	}
	if a.Name == "" {
		a.Name = fallback
	}
	for _, r := range a.Name {
		a.Initial = strings.ToUpper(string(r))
		break
	}
	return a
}

// safeImageURL lets html/template emit image sources it would otherwise
// rewrite to "#ZgotmplZ": inline data:image/ URLs and plain http(s) links.
func safeImageURL(raw string) template.URL {
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "data:image/"),
		strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "http://"):
		return template.URL(raw)
	default:
		return ""
	}
}

// timeAgo formats the age of t in the short form used by feeds: "now", "5m",
// "3h", "2d", then a calendar date after a week.
func timeAgo(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	case t.Year() == now.Year():
		return t.Format("Jan 2")
	default:
		return t.Format("Jan 2, 2006")
	}
}
