package models

import (
	"time"
)

// Comment is a reader or user annotation on an article. ReferTo links
// a reply to its parent comment on the same article; the chain forms a
// forest because a parent must already exist when a reply is created.
type Comment struct {
	ID         int64     `json:"id" db:"id"`
	Content    string    `json:"content" db:"content"`
	Nickname   string    `json:"nickname" db:"nickname"`
	Reviewed   bool      `json:"reviewed" db:"reviewed"`
	CreateTime time.Time `json:"create_time" db:"create_time"`
	IPAddress  string    `json:"-" db:"ip_address"`
	IsAuthor   bool      `json:"is_author" db:"is_author"`
	ArticleID  string    `json:"article" db:"article"`
	UserID     *string   `json:"user,omitempty" db:"user"`
	ReferTo    *int64    `json:"refer_to,omitempty" db:"refer_to"`
}

// DisplayName returns the name shown beside the comment. The article
// author's comments are marked.
func (c *Comment) DisplayName() string {
	if c.IsAuthor {
		return "[Author]" + c.Nickname
	}
	return c.Nickname
}

// CommentView is the API representation of a comment.
type CommentView struct {
	ID       int64     `json:"id"`
	Nickname string    `json:"nickname"`
	Content  string    `json:"content"`
	Reviewed bool      `json:"reviewed"`
	Time     time.Time `json:"time"`
	ReferTo  *int64    `json:"refer_to"`
}

// View builds the API representation of the comment.
func (c *Comment) View() CommentView {
	return CommentView{
		ID:       c.ID,
		Nickname: c.DisplayName(),
		Content:  c.Content,
		Reviewed: c.Reviewed,
		Time:     c.CreateTime,
		ReferTo:  c.ReferTo,
	}
}
