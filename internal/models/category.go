package models

import (
	"time"
)

// Category is a named grouping for articles
type Category struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	CreateTime time.Time `json:"create_time" db:"create_time"`
	CreateBy   *string   `json:"create_by,omitempty" db:"create_by"`

	// ArticleCount is populated by list queries, not stored.
	ArticleCount int `json:"article_count" db:"-"`
}

// Category list order keys accepted by the API.
const (
	CategoryOrderCreateTime   = "create_time"
	CategoryOrderName         = "name"
	CategoryOrderArticleCount = "article_count"
)

// CategoryView is the API representation of a category.
type CategoryView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ArticleCount int    `json:"article_count"`
}

// View builds the API representation of the category.
func (c *Category) View() CategoryView {
	return CategoryView{
		ID:           c.ID,
		Name:         c.Name,
		ArticleCount: c.ArticleCount,
	}
}
