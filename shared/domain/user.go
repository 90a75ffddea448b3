package domain

// User is an entry of the feed API's bulk user listing.
type User struct {
	Id             UserId
	FullName       string
	Username       string
	ProfilePicture string
	IsFollowed     bool
}

