package api

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/errs"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/model"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/routes"
)

const MaxCommentLength = 2000

var commentPolicy = bluemonday.StrictPolicy()

// ListBlogs accepts either a bare array or an object wrapping it under "blogs".
func (c *Client) ListBlogs(ctx context.Context) ([]model.Summary, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, routes.Blogs, nil, &raw); err != nil {
		return nil, classify("list blogs", err)
	}
	return decodeList[model.Summary](raw, "blogs")
}

// Categories is cached for the client's categories ttl.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	return c.categories.GetOrLoad(routes.Categories, func() ([]model.Category, error) {
		var raw json.RawMessage
		if err := c.do(ctx, http.MethodGet, routes.Categories, nil, &raw); err != nil {
			return nil, classify("list categories", err)
		}
		return decodeList[model.Category](raw, "categories")
	})
}

func decodeList[T any](raw json.RawMessage, key string) ([]T, error) {
	var list []T
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	inner, ok := wrapped[key]
	if !ok {
		return nil, fmt.Errorf("failed to decode %s: missing %q", key, key)
	}
	if err := json.Unmarshal(inner, &list); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return list, nil
}

// ToggleLike flips the caller's like and reports the new state.
func (c *Client) ToggleLike(ctx context.Context, id model.ContentID) (bool, error) {
	var out struct {
		Liked bool `json:"liked"`
	}
	if err := c.do(ctx, http.MethodPost, routes.Expand(routes.BlogLike, "id", id.String()), nil, &out); err != nil {
		return false, classify("like", err)
	}
	return out.Liked, nil
}

// ToggleBookmark flips the caller's bookmark and reports the new state.
func (c *Client) ToggleBookmark(ctx context.Context, id model.ContentID) (bool, error) {
	var out struct {
		Saved bool `json:"saved"`
	}
	if err := c.do(ctx, http.MethodPost, routes.Expand(routes.BlogBookmark, "id", id.String()), nil, &out); err != nil {
		return false, classify("bookmark", err)
	}
	return out.Saved, nil
}

// SanitizeComment strips all markup; the server stores comments as plain text.
func SanitizeComment(text string) string {
	return strings.TrimSpace(html.UnescapeString(commentPolicy.Sanitize(text)))
}

// AddComment posts a comment, or a reply when parent is non-nil.
func (c *Client) AddComment(ctx context.Context, id model.ContentID, text string, parent *int64) (*model.Comment, error) {
	text = SanitizeComment(text)
	if text == "" {
		return nil, errs.Validation("comment", "is empty")
	}
	if len([]rune(text)) > MaxCommentLength {
		return nil, errs.Validation("comment", "is longer than %d characters", MaxCommentLength)
	}

	body := model.Comment{Text: text, ParentID: parent}
	var out model.Comment
	if err := c.do(ctx, http.MethodPost, routes.Expand(routes.BlogComments, "id", id.String()), body, &out); err != nil {
		return nil, classify("comment", err)
	}
	if out.Text == "" {
		out.Text = text
	}
	return &out, nil
}
