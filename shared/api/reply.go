package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/circle-dev/circle/shared/domain"
)

// Request DTOs

// CreateReplyRequest is the body of POST /threads/{id}/replies.
// FileUrl is serialized as null when the reply has no image.
type CreateReplyRequest struct {
	Content string  `json:"content"`
	UserId  int64   `json:"userId" validate:"required"`
	User    string  `json:"user"`
	FileUrl *string `json:"fileUrl"`
}

// Response DTOs

type RepliesResponse struct {
	Replies []Reply `json:"replies" validate:"dive"`
}

type CreateReplyResponse struct {
	Reply *Reply `json:"reply" validate:"required"`
}

type Reply struct {
	Id        int64       `json:"id" validate:"required"`
	ThreadId  int64       `json:"threadId"`
	UserId    int64       `json:"userId"`
	User      ReplyAuthor `json:"user"`
	Content   string      `json:"content"`
	FileUrl   *string     `json:"fileUrl"`
	CreatedAt *time.Time  `json:"createdAt"`
}

// ReplyAuthor accepts both shapes the API produces: an author object
// or the bare display name echoed back from a create request.
type ReplyAuthor struct {
	Id             int64  `json:"id"`
	FullName       string `json:"fullName"`
	ProfilePicture string `json:"profilePicture"`
}

func (a *ReplyAuthor) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &a.FullName)
	}
	type plain ReplyAuthor
	return json.Unmarshal(data, (*plain)(a))
}

func (r Reply) ToDomain() domain.Reply {
	reply := domain.Reply{
		Id:       r.Id,
		ThreadId: r.ThreadId,
		Author: domain.ReplyAuthor{
			Id:             r.User.Id,
			FullName:       r.User.FullName,
			ProfilePicture: r.User.ProfilePicture,
		},
		Content: r.Content,
	}
	if reply.Author.Id == 0 {
		reply.Author.Id = r.UserId
	}
	if r.FileUrl != nil {
		reply.FileURL = *r.FileUrl
	}
	if r.CreatedAt != nil {
		reply.CreatedAt = *r.CreatedAt
	}
	return reply
}
