package entity

import "time"

// Comment is a reader comment on an article.
// ArticleID is a plain reference; the comment does not own the article.
type Comment struct {
	ID         string
	ArticleID  string
	Content    string
	Author     string
	CreateDate time.Time
}

func (c *Comment) Key() string { return c.ID }

func (c *Comment) Clone() *Comment {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
