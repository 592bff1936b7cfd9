package user

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

type User struct {
	ID              string    `yaml:"id" gorm:"primaryKey"`
	Name            string    `yaml:"name"`
	Email           string    `yaml:"email" gorm:"index"`
	ProfileImageURL string    `yaml:"profile_image_url"`
	Role            Role      `yaml:"role"`
	CreatedAt       time.Time `yaml:"created_at"`
	UpdatedAt       time.Time `yaml:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
