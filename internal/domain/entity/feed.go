package entity

import (
	"maps"
	"slices"
)

// StringSet is an unordered set of strings.
type StringSet map[string]struct{}

// NewStringSet builds a set from values. Empty strings are ignored.
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		if v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}

// Has reports whether v is in the set.
func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Values returns the members in sorted order.
func (s StringSet) Values() []string {
	return slices.Sorted(maps.Keys(s))
}

// FeedPreferences describe what a user wants in their feed.
type FeedPreferences struct {
	FavoriteCategory StringSet
	FavoriteAuthor   StringSet
	FavoriteCountry  StringSet
}

// Clone returns a deep copy of the preferences.
func (p FeedPreferences) Clone() FeedPreferences {
	return FeedPreferences{
		FavoriteCategory: maps.Clone(p.FavoriteCategory),
		FavoriteAuthor:   maps.Clone(p.FavoriteAuthor),
		FavoriteCountry:  maps.Clone(p.FavoriteCountry),
	}
}

// Subscription binds a user to their feed preferences.
type Subscription struct {
	UserID      string
	Preferences FeedPreferences
}

func (s *Subscription) Key() string { return s.UserID }

func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	return &Subscription{UserID: s.UserID, Preferences: s.Preferences.Clone()}
}
