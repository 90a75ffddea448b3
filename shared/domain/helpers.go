package domain

// FindUser scans a user listing for the given id.
func FindUser(users []User, id UserId) (User, bool) {
	for _, u := range users {
		if u.Id == id {
			return u, true
		}
	}
	return User{}, false
}
