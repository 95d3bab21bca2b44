package dataroom

import (
	"time"
)

// NodeType tags a node as a folder or a file. Immutable after creation.
type NodeType string

const (
	NodeTypeFolder NodeType = "FOLDER"
	NodeTypeFile   NodeType = "FILE"
)

// Node is a folder or file inside a data room.
// ParentID nil means top level within the data room.
type Node struct {
	ID         string    `json:"id" db:"id"`
	DataroomID string    `json:"dataroom_id" db:"dataroom_id"`
	ParentID   *string   `json:"parent_id" db:"parent_id"`
	Name       string    `json:"name" db:"name"`
	Type       NodeType  `json:"type" db:"type"`
	FilePath   string    `json:"-" db:"file_path"` // Opaque blob handle, files only
	MimeType   string    `json:"mime_type,omitempty" db:"mime_type"`
	Size       int64     `json:"size" db:"size"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

func (n *Node) IsFolder() bool { return n.Type == NodeTypeFolder }
func (n *Node) IsFile() bool   { return n.Type == NodeTypeFile }

// ParentKey returns the parent id, or "" for top-level nodes
func (n *Node) ParentKey() string {
	if n.ParentID == nil {
		return ""
	}
	return *n.ParentID
}

// StringPtr returns nil for "" and &s otherwise
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
