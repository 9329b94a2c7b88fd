// Package article provides HTTP handlers for article endpoints: CRUD, search,
// date sorting, and reader ratings and reviews.
package article

import (
	"newsdesk/internal/domain/entity"
	artUC "newsdesk/internal/usecase/article"
)

// DTO represents the JSON structure for article data transfer.
type DTO struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	HeaderImage   string    `json:"header_image,omitempty"`
	ContentImage  string    `json:"content_image,omitempty"`
	CreateDate    string    `json:"create_date"`
	Author        string    `json:"author"`
	Category      string    `json:"category,omitempty"`
	Country       string    `json:"country,omitempty"`
	AverageRating float64   `json:"average_rating"`
	Ratings       []float64 `json:"ratings"`
	Reviews       []string  `json:"reviews"`
}

// Request is the body of POST /articles and PUT /articles/{id}.
type Request struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	HeaderImage  string `json:"header_image"`
	ContentImage string `json:"content_image"`
	CreateDate   string `json:"create_date"`
	Author       string `json:"author"`
	Category     string `json:"category"`
	Country      string `json:"country"`
}

func (r Request) input() artUC.CreateInput {
	return artUC.CreateInput{
		Title:        r.Title,
		Content:      r.Content,
		HeaderImage:  r.HeaderImage,
		ContentImage: r.ContentImage,
		CreateDate:   r.CreateDate,
		Author:       r.Author,
		Category:     r.Category,
		Country:      r.Country,
	}
}

func toDTO(a *entity.Article) DTO {
	ratings := a.Ratings
	if ratings == nil {
		ratings = []float64{}
	}
	reviews := a.ListReviews()
	if reviews == nil {
		reviews = []string{}
	}
	return DTO{
		ID:            a.ID,
		Title:         a.Title,
		Content:       a.Content,
		HeaderImage:   a.HeaderImage,
		ContentImage:  a.ContentImage,
		CreateDate:    a.CreateDate,
		Author:        a.Author,
		Category:      a.Category,
		Country:       a.Country,
		AverageRating: a.AverageRating(),
		Ratings:       ratings,
		Reviews:       reviews,
	}
}

func toDTOs(articles []*entity.Article) []DTO {
	out := make([]DTO, 0, len(articles))
	for _, a := range articles {
		out = append(out, toDTO(a))
	}
	return out
}
