// Package routes lists the blog API endpoints this client talks to, relative to the API base URL.
package routes

import (
	"net/url"
	"strings"
)

// Identity
const (
	AuthMe        = "/auth/me"
	AuthExchange  = "/auth/{provider}"
	AuthChallenge = "/auth/challenge"
)

// Content persistence
const (
	Content     = "/content"
	ContentItem = "/content/{id}"
)

// Read path and interactions
const (
	Blogs        = "/blogs"
	Categories   = "/categories"
	BlogLike     = "/blogs/{id}/like"
	BlogBookmark = "/blogs/{id}/save"
	BlogComments = "/blogs/{id}/comments"
)

// Expand fills {name} placeholders with path-escaped values given as name, value pairs.
func Expand(route string, pairs ...string) string {
	for i := 0; i+1 < len(pairs); i += 2 {
		route = strings.ReplaceAll(route, "{"+pairs[i]+"}", url.PathEscape(pairs[i+1]))
	}
	return route
}
