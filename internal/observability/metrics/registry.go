package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Publishing metrics track editorial and reader activity.
var (
	// ArticlesCreatedTotal counts created articles by category.
	ArticlesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_articles_created_total",
			Help: "Total number of articles created",
		},
		[]string{"category"},
	)

	// RatingsTotal counts submitted ratings.
	RatingsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsdesk_ratings_total",
			Help: "Total number of article ratings submitted",
		},
	)

	// RatingValue records the distribution of rating values.
	RatingValue = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsdesk_rating_value",
			Help:    "Distribution of submitted rating values",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
	)

	// ReviewsTotal counts submitted reviews.
	ReviewsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsdesk_reviews_total",
			Help: "Total number of article reviews submitted",
		},
	)

	// CommentsCreatedTotal counts created comments.
	CommentsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsdesk_comments_created_total",
			Help: "Total number of comments created",
		},
	)
)

// Auth metrics track logins and authorization decisions.
var (
	// LoginsTotal counts login attempts by result (success, failure).
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_logins_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// AccessDeniedTotal counts requests rejected by the role check.
	AccessDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_access_denied_total",
			Help: "Total number of requests denied for insufficient role",
		},
		[]string{"required_role"},
	)
)
