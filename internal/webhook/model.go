package webhook

import (
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/user"
)

// Lifecycle event types.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Event is a signed user lifecycle delivery.
type Event struct {
	Type string    `json:"type"`
	Data EventUser `json:"data"`
}

// EventUser is the user object carried in Event.Data.
type EventUser struct {
	ID             string         `json:"id"`
	FirstName      *string        `json:"first_name"`
	LastName       *string        `json:"last_name"`
	Username       *string        `json:"username"`
	ImageURL       *string        `json:"image_url"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
}

type EmailAddress struct {
	EmailAddress string `json:"email_address"`
}

// Profile maps the payload onto a user profile; the first email address wins.
func (u EventUser) Profile() user.Profile {
	p := user.Profile{
		ExternalID: u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Username:   u.Username,
		AvatarURL:  u.ImageURL,
	}
	if len(u.EmailAddresses) > 0 && u.EmailAddresses[0].EmailAddress != "" {
		email := u.EmailAddresses[0].EmailAddress
		p.Email = &email
	}
	return p
}
