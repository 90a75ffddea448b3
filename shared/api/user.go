package api

import "github.com/circle-dev/circle/shared/domain"

// Response DTOs

// User is one entry of GET /users. The endpoint returns a bare JSON array.
type User struct {
	Id             int64  `json:"id" validate:"required"`
	FullName       string `json:"fullName"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
	IsFollowed     bool   `json:"isFollowed"`
}

// UsersResponse exists so the listing can be validated element by element.
type UsersResponse struct {
	Users []User `validate:"dive"`
}

func (u User) ToDomain() domain.User {
	return domain.User{
		Id:             u.Id,
		FullName:       u.FullName,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
		IsFollowed:     u.IsFollowed,
	}
}
