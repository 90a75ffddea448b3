package frontend_domain

import (
	"html/template"

	"github.com/circle-dev/circle/shared/domain"
)

// Avatar is a profile picture, or the initial shown in its place.
type Avatar struct {
	Picture template.URL
	Initial string
	Name    string
}

// Post is the thread shown at the top of the post detail page.
type Post struct {
	Id         domain.ThreadId
	Author     Avatar
	Username   string
	Content    template.HTML // rendered; empty means "No content"
	TimeAgo    string
	ReplyCount int
	LikeCount  int
	Liked      bool
}

type Reply struct {
	Id       domain.ReplyId
	Author   Avatar
	Content  template.HTML
	ImageSrc template.URL // empty when the reply has no image
}

// Draft is the reply composer as last left by the user.
type Draft struct {
	Text         string
	ImagePreview template.URL
	ImageName    string
	ImageWidth   int
	ImageHeight  int
	Error        string
}

type SuggestedUser struct {
	Avatar     Avatar
	Username   string
	IsFollowed bool
}
