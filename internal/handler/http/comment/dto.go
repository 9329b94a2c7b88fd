// Package comment provides HTTP handlers for reader comments.
// Comments are authored by the caller; only the author or an editor may
// change or remove one.
package comment

import (
	"time"

	"newsdesk/internal/domain/entity"
)

// DTO represents the JSON structure for comment data transfer.
type DTO struct {
	ID         string    `json:"id"`
	ArticleID  string    `json:"article_id"`
	Content    string    `json:"content"`
	Author     string    `json:"author"`
	CreateDate time.Time `json:"create_date"`
}

// CreateRequest is the body of POST /comments.
type CreateRequest struct {
	ArticleID string `json:"article_id"`
	Content   string `json:"content"`
}

// UpdateRequest is the body of PUT /comments/{id}.
type UpdateRequest struct {
	Content string `json:"content"`
}

func toDTO(c *entity.Comment) DTO {
	return DTO{
		ID:         c.ID,
		ArticleID:  c.ArticleID,
		Content:    c.Content,
		Author:     c.Author,
		CreateDate: c.CreateDate.UTC(),
	}
}

func toDTOs(cs []*entity.Comment) []DTO {
	out := make([]DTO, 0, len(cs))
	for _, c := range cs {
		out = append(out, toDTO(c))
	}
	return out
}
