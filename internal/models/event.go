package models

import (
	"time"
)

// Event types recorded by the system.
const (
	EventAuthLogin      = "Auth: Login"
	EventAuthLogout     = "Auth: Logout"
	EventUserCreate     = "User: Create"
	EventUserModify     = "User: Modify"
	EventUserDelete     = "User: Delete"
	EventCategoryCreate = "Category: Create"
	EventCategoryModify = "Category: Modify"
	EventCategoryDelete = "Category: Delete"
	EventArticlePost    = "Article: Post"
	EventArticleEdit    = "Article: Edit"
	EventArticleDelete  = "Article: Delete"
	EventCommentCreate  = "Comment: Create"
	EventCommentReview  = "Comment: Review"
	EventCommentDelete  = "Comment: Delete"
	EventException      = "Exception"
)

// Event is an append-only audit record. Request holds the request line
// and headers of the triggering request; the body is never captured.
type Event struct {
	ID          string    `json:"id" db:"id"`
	Type        string    `json:"type" db:"type"`
	Description string    `json:"description" db:"description"`
	IPAddress   string    `json:"ip_address" db:"ip_address"`
	Endpoint    string    `json:"endpoint" db:"endpoint"`
	Request     string    `json:"request" db:"request"`
	CreateTime  time.Time `json:"create_time" db:"create_time"`
	UserID      *string   `json:"user,omitempty" db:"user"`
}
