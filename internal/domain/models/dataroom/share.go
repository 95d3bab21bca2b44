package dataroom

import "time"

// ShareLink grants read-only access to a data room, or to the subtree
// under SharedFolderID when it is set.
type ShareLink struct {
	Token          string    `json:"token" db:"token"`
	DataroomID     string    `json:"dataroom_id" db:"dataroom_id"`
	SharedFolderID *string   `json:"shared_folder_id" db:"shared_folder_id"` // NULL = whole room
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// SharedOwner is the public part of the room owner shown to share viewers
type SharedOwner struct {
	Email string `json:"email,omitempty"`
}

// SharedDataroom is the room summary exposed through a share link
type SharedDataroom struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Owner SharedOwner `json:"owner"`
	Nodes []Node      `json:"nodes"`
}

// SharedView is the response to a share link request
type SharedView struct {
	Dataroom        SharedDataroom `json:"dataroom"`
	SharedFolderID  *string        `json:"shared_folder_id"`
	CurrentFolderID *string        `json:"current_folder_id"`
	Breadcrumbs     []Breadcrumb   `json:"breadcrumbs"`
}
