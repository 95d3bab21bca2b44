package dataroom

import (
	"time"
)

// DefaultDataroomName is used for the room created on a user's first visit
const DefaultDataroomName = "Data Room"

type Dataroom struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	Name       string    `json:"name" db:"name"`
	OwnerEmail string    `json:"owner_email,omitempty" db:"owner_email"`
	ShareToken *string   `json:"-" db:"share_token"` // Legacy single share token for the whole room
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// DataroomWithNodes is a room plus its flat node list
type DataroomWithNodes struct {
	Dataroom
	Nodes []Node `json:"nodes"`
}
