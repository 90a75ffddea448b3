package api

import (
	"encoding/json"
	"time"

	"github.com/circle-dev/circle/shared/domain"
)

// Response DTOs

// ThreadResponse is the body of GET /threads/{id}.
// Thread is nil when the API answers without one.
type ThreadResponse struct {
	Thread *Thread `json:"thread"`
}

type Thread struct {
	Id        int64      `json:"id"`
	UserId    int64      `json:"userId"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"createdAt"`
	// Either an explicit count or the embedded replies array may be present.
	ReplyCount *int              `json:"replyCount" validate:"omitempty,min=0"`
	Replies    []json.RawMessage `json:"replies"`
}

func (t Thread) ToDomain() domain.Thread {
	thread := domain.Thread{
		Id:         t.Id,
		UserId:     t.UserId,
		Content:    t.Content,
		ReplyCount: len(t.Replies),
	}
	if t.ReplyCount != nil {
		thread.ReplyCount = *t.ReplyCount
	}
	if t.CreatedAt != nil {
		thread.CreatedAt = *t.CreatedAt
	}
	return thread
}
