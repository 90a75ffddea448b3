package domain

import "time"

// ReplyAuthor is the author data denormalized into every reply.
type ReplyAuthor struct {
	Id             UserId
	FullName       string
	ProfilePicture string
}

// Reply is a comment attached to a Thread.
type Reply struct {
	Id        ReplyId
	ThreadId  ThreadId
	Author    ReplyAuthor
	Content   string
	FileURL   string // empty when the reply has no image
	CreatedAt time.Time
}

func (r Reply) HasImage() bool {
	return r.FileURL != ""
}
