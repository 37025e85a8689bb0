// File: internal/user/model.go
package user

import (
	"time"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/common"

	"github.com/google/uuid"
)

// User mirrors an identity-provider account. Exactly one row exists per ExternalID.
type User struct {
	common.BaseModel
	ExternalID string  `gorm:"type:varchar(255);not null;uniqueIndex:uq_users_external_id"`
	Email      *string `gorm:"type:varchar(255)"`
	FirstName  *string `gorm:"type:varchar(100)"`
	LastName   *string `gorm:"type:varchar(100)"`
	Username   *string `gorm:"type:varchar(100)"`
	AvatarURL  *string `gorm:"type:text"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Profile is the identity-provider view of a user, as delivered by lifecycle events.
type Profile struct {
	ExternalID string
	Email      *string
	FirstName  *string
	LastName   *string
	Username   *string
	AvatarURL  *string
}

// apply copies profile fields onto u.
func (p Profile) apply(u *User) {
	u.ExternalID = p.ExternalID
	u.Email = p.Email
	u.FirstName = p.FirstName
	u.LastName = p.LastName
	u.Username = p.Username
	u.AvatarURL = p.AvatarURL
}

// UserResponse defines the structure for user data sent in API responses.
type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"external_id"`
	Email      *string   `json:"email"`
	FirstName  *string   `json:"first_name"`
	LastName   *string   `json:"last_name"`
	Username   *string   `json:"username"`
	AvatarURL  *string   `json:"avatar_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToUserResponse converts a User model to a UserResponse DTO.
func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Username:   u.Username,
		AvatarURL:  u.AvatarURL,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
