package frontend_domain

import "github.com/circle-dev/circle/shared/domain"

// CommonTemplateData holds fields that are common to all page templates.
// Available in templates as .Common via the TemplateData wrapper.
type CommonTemplateData struct {
	Error      string
	Success    string
	User       *domain.User // nil when nobody is signed in or the id is unknown
	UserId     domain.UserId
	Validation ValidationData
	CSRFToken  string // CSRF token for form submissions
}

// ValidationData holds the limits templates show next to inputs.
type ValidationData struct {
	MaxImageSizeBytes int64
	AcceptedImageTypes string // value of the file input's accept attribute
}
