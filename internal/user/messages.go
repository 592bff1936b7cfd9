package user

import (
	"time"

	"github.com/kazz187/taskboard/internal/pagination"
)

type UserView struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	Role            Role      `json:"role"`
	CreatedAt       time.Time `json:"created_at"`
}

func ToView(u *User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		ProfileImageURL: u.ProfileImageURL,
		Role:            u.Role,
		CreatedAt:       u.CreatedAt,
	}
}

type CreateUserRequest struct {
	// ID is generated when empty.
	ID              string `json:"id,omitempty" validate:"omitempty,max=64"`
	Name            string `json:"name" validate:"required,max=200"`
	Email           string `json:"email,omitempty" validate:"omitempty,email"`
	ProfileImageURL string `json:"profile_image_url,omitempty" validate:"omitempty,url"`
	Role            Role   `json:"role" validate:"required,oneof=admin member"`
}

type CreateUserResponse struct {
	User *UserView `json:"user"`
}

type GetUserRequest struct {
	ID string `json:"id" validate:"required"`
}

type GetUserResponse struct {
	User *UserView `json:"user"`
}

type ListUsersRequest struct {
	Pagination *pagination.Request `json:"pagination,omitempty"`
}

type ListUsersResponse struct {
	Users      []*UserView          `json:"users"`
	Pagination *pagination.Response `json:"pagination"`
}
