package frontend_domain

import "github.com/circle-dev/circle/shared/domain"

// ThreadPageData renders either the loaded post or, when LoadError is set,
// only the centered error message.
type ThreadPageData struct {
	ThreadId  domain.ThreadId
	Loading   bool
	LoadError string
	Post      *Post
	Replies   []Reply
	Draft     Draft
	Suggested []SuggestedUser
}

type LoginPageData struct {
	Users       []domain.User
	Next        string // local path to return to after signing in
	Unavailable bool   // the user listing could not be fetched
}
