package metrics

// RecordArticleCreated records a new article in category.
func RecordArticleCreated(category string) {
	if category == "" {
		category = "none"
	}
	ArticlesCreatedTotal.WithLabelValues(category).Inc()
}

// RecordRating records one submitted rating.
func RecordRating(value float64) {
	RatingsTotal.Inc()
	RatingValue.Observe(value)
}

// RecordReview records one submitted review.
func RecordReview() {
	ReviewsTotal.Inc()
}

// RecordCommentCreated records one new comment.
func RecordCommentCreated() {
	CommentsCreatedTotal.Inc()
}

// RecordLogin records the outcome of a login attempt.
func RecordLogin(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	LoginsTotal.WithLabelValues(result).Inc()
}

// RecordAccessDenied records a request rejected because the caller lacked role.
func RecordAccessDenied(role string) {
	AccessDeniedTotal.WithLabelValues(role).Inc()
}
