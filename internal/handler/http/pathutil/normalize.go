// Package pathutil turns request paths into bounded route labels for metrics and spans.
package pathutil

import "strings"

// staticSegments are path segments that are part of a route, never an identifier.
var staticSegments = map[string]struct{}{
	"articles":    {},
	"categories":  {},
	"comments":    {},
	"users":       {},
	"feed":        {},
	"auth":        {},
	"search":      {},
	"sort":        {},
	"ratings":     {},
	"rating":      {},
	"reviews":     {},
	"preferences": {},
	"me":          {},
	"email":       {},
	"password":    {},
	"role":        {},
	"login":       {},
	"logout":      {},
	"health":      {},
	"metrics":     {},
}

// NormalizePath replaces identifier segments with ":id" so that label
// cardinality stays bounded.
//
// Examples:
//
//	NormalizePath("/articles/0b7e7c1a-4a7b")         // "/articles/:id"
//	NormalizePath("/articles/0b7e7c1a-4a7b/ratings") // "/articles/:id/ratings"
//	NormalizePath("/articles/search?q=go")           // "/articles/search"
//	NormalizePath("/health/")                        // "/health"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	if path == "" || path == "/" {
		return "/"
	}

	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if _, ok := staticSegments[segments[0]]; !ok {
		// 未知のルートはまとめて1ラベルにする
		return "/:unknown"
	}
	for i := 1; i < len(segments); i++ {
		if _, ok := staticSegments[segments[i]]; !ok {
			segments[i] = ":id"
		}
	}
	return "/" + strings.Join(segments, "/")
}
