package postdetail

import (
	"slices"

	"github.com/circle-dev/circle/shared/domain"
)

// Replies is the ordered reply sequence of a view. Server order is kept for
// the fetched prefix; submitted replies are appended at the end.
type Replies struct {
	items []domain.Reply
}

func NewReplies(items []domain.Reply) Replies {
	return Replies{items: slices.Clone(items)}
}

func (r *Replies) Append(reply domain.Reply) {
	r.items = append(r.items, reply)
}

func (r *Replies) Len() int {
	return len(r.items)
}

// Items returns a copy; callers may keep it after the view changes.
func (r *Replies) Items() []domain.Reply {
	if r.items == nil {
		return []domain.Reply{}
	}
	return slices.Clone(r.items)
}
