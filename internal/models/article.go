package models

import (
	"time"
)

// Article is a published or draft content unit. Content is rendered
// from SourceText under TextType at write time and cached.
type Article struct {
	ID            string    `json:"id" db:"id"`
	IsCommentable bool      `json:"is_commentable" db:"is_commentable"`
	Title         string    `json:"title" db:"title"`
	TextType      string    `json:"text_type" db:"text_type"`
	SourceText    string    `json:"source_text" db:"source_text"`
	Content       string    `json:"content" db:"content"`
	ReadCount     int       `json:"read_count" db:"read_count"`
	PostTime      time.Time `json:"post_time" db:"post_time"`
	UpdateTime    time.Time `json:"update_time" db:"update_time"`
	Public        bool      `json:"public" db:"public"`
	CategoryID    *string   `json:"category,omitempty" db:"category"`
	AuthorID      *string   `json:"author,omitempty" db:"author"`

	// Joined display names, populated by list/get queries.
	CategoryName string `json:"-" db:"-"`
	AuthorName   string `json:"-" db:"-"`
}

// Article list order keys accepted by the API.
var ArticleOrderKeys = map[string]string{
	"id":          "id",
	"category":    "category",
	"author":      "author",
	"title":       "title",
	"text_type":   "text_type",
	"read_count":  "read_count",
	"post_time":   "post_time",
	"update_time": "update_time",
}

// ArticleOrderDefault is used when no order key is given.
const ArticleOrderDefault = "post_time"

// OwnedBy reports whether the article's author is the given user ID.
// An article whose author was deleted is owned by nobody.
func (a *Article) OwnedBy(userID string) bool {
	return a.AuthorID != nil && *a.AuthorID == userID
}

// ArticleView is the API representation of an article.
type ArticleView struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Author        UserRef     `json:"author"`
	Category      CategoryRef `json:"category"`
	Content       *string     `json:"content,omitempty"`
	IsCommentable bool        `json:"is_commentable"`
	ReadCount     int         `json:"read_count"`
	PostTime      time.Time   `json:"post_time"`
	UpdateTime    time.Time   `json:"update_time"`
	TextType      string      `json:"text_type,omitempty"`
	SourceText    string      `json:"source_text,omitempty"`
}

// CategoryRef is an embedded category reference in article views.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// View builds the API representation of the article.
func (a *Article) View(withContent, withSource bool) ArticleView {
	v := ArticleView{
		ID:            a.ID,
		Title:         a.Title,
		IsCommentable: a.IsCommentable,
		ReadCount:     a.ReadCount,
		PostTime:      a.PostTime,
		UpdateTime:    a.UpdateTime,
	}
	if a.AuthorID != nil {
		v.Author = UserRef{ID: *a.AuthorID, Name: a.AuthorName}
	}
	if a.CategoryID != nil {
		v.Category = CategoryRef{ID: *a.CategoryID, Name: a.CategoryName}
	}
	if withContent {
		content := a.Content
		v.Content = &content
	}
	if withSource {
		v.TextType = a.TextType
		v.SourceText = a.SourceText
	}
	return v
}
