// Package sidebar builds the "Suggested for you" list shown next to a post.
package sidebar

import "github.com/circle-dev/circle/shared/domain"

const DefaultLimit = 3

// Suggest returns up to limit users from the listing, in listing order,
// skipping the current user.
func Suggest(users []domain.User, current domain.UserId, limit int) []domain.User {
	if limit <= 0 {
		limit = DefaultLimit
	}
	out := make([]domain.User, 0, min(limit, len(users)))
	for _, u := range users {
		if len(out) == limit {
			break
		}
		if u.Id == current {
			continue
		}
		out = append(out, u)
	}
	return out
}
