// Package entity defines the core domain entities and validation logic for the application.
// It contains the publishing records (Article, Category, Comment, User) and the feed
// preferences used for matching, along with their validation rules and domain-specific errors.
package entity

import "slices"

// Article represents a published article together with its reader ratings and reviews.
type Article struct {
	ID           string
	Title        string
	Content      string
	HeaderImage  string
	ContentImage string
	// CreateDate is the date string supplied at creation (see ParseDate for accepted layouts).
	CreateDate string
	Author     string
	Category   string
	Country    string

	Ratings []float64
	Reviews []string
}

// Key returns the article ID.
func (a *Article) Key() string { return a.ID }

// Clone returns a deep copy of the article.
func (a *Article) Clone() *Article {
	if a == nil {
		return nil
	}
	c := *a
	c.Ratings = slices.Clone(a.Ratings)
	c.Reviews = slices.Clone(a.Reviews)
	return &c
}

// AddRating appends a rating value.
func (a *Article) AddRating(value float64) {
	a.Ratings = append(a.Ratings, value)
}

// AverageRating returns the arithmetic mean of the ratings, or 0 when there are none.
func (a *Article) AverageRating() float64 {
	if len(a.Ratings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range a.Ratings {
		sum += r
	}
	return sum / float64(len(a.Ratings))
}

// AddReview appends a review text.
func (a *Article) AddReview(text string) {
	a.Reviews = append(a.Reviews, text)
}

// ListReviews returns a copy of the reviews in the order they were added.
func (a *Article) ListReviews() []string {
	return slices.Clone(a.Reviews)
}
