package domain

import "time"

// Thread is a root post of the feed.
type Thread struct {
	Id         ThreadId
	UserId     UserId // author reference
	Content    string
	CreatedAt  time.Time
	ReplyCount int
}
