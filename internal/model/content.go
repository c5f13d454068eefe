// Package model defines the content and identity records exchanged with the blog API.
package model

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ContentID is assigned by the server. The API has used both numeric and string ids.
type ContentID string

func (id *ContentID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ContentID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ContentID(n.String())
	return nil
}

func (id ContentID) String() string { return string(id) }

type LifecycleState string

const (
	StateDraft     LifecycleState = "draft"
	StateScheduled LifecycleState = "scheduled"
	StatePublished LifecycleState = "published"
	StateArchived  LifecycleState = "archived"
)

var transitions = map[LifecycleState][]LifecycleState{
	StateDraft:     {StateDraft, StateScheduled, StatePublished, StateArchived},
	StateScheduled: {StateDraft, StateScheduled, StatePublished, StateArchived},
	StatePublished: {StateDraft, StatePublished, StateArchived},
	StateArchived:  {},
}

func (s LifecycleState) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether a persisted item in state s may be saved in state to.
// The empty state stands for a never-persisted item and behaves like draft.
func (s LifecycleState) CanTransition(to LifecycleState) bool {
	if s == "" {
		s = StateDraft
	}
	return slices.Contains(transitions[s], to)
}

func (s LifecycleState) Terminal() bool { return s == StateArchived }

type SEO struct {
	MetaTitle       string `json:"metaTitle,omitempty"`
	MetaDescription string `json:"metaDescription,omitempty"`
	MetaKeywords    string `json:"metaKeywords,omitempty"`
}

// Content is the canonical representation of a post on the wire.
type Content struct {
	ID            ContentID      `json:"id,omitempty"`
	Title         string         `json:"title"`
	Excerpt       string         `json:"excerpt"`
	Body          string         `json:"content"`
	Category      string         `json:"category"`
	Tags          []string       `json:"tags"`
	FeaturedImage string         `json:"featuredImage,omitempty"`
	SEO           SEO            `json:"seo"`
	ReadTime      string         `json:"readTime,omitempty"`
	Featured      bool           `json:"isFeatured"`
	Sticky        bool           `json:"isSticky"`
	Author        string         `json:"author,omitempty"`
	State         LifecycleState `json:"lifecycleState"`
	PublishAt     *time.Time     `json:"publishAt,omitempty"`
	PublishedAt   *time.Time     `json:"publishedAt,omitempty"`
	UpdatedAt     *time.Time     `json:"updatedAt,omitempty"`
}

// Clone returns a deep copy.
func (c Content) Clone() Content {
	c.Tags = slices.Clone(c.Tags)
	c.PublishAt = cloneTime(c.PublishAt)
	c.PublishedAt = cloneTime(c.PublishedAt)
	c.UpdatedAt = cloneTime(c.UpdatedAt)
	return c
}

// SameFields compares the editable fields. Ids and server bookkeeping are ignored, tags are a set.
func (c Content) SameFields(o Content) bool {
	return c.Title == o.Title &&
		c.Excerpt == o.Excerpt &&
		c.Body == o.Body &&
		c.Category == o.Category &&
		slices.Equal(NormalizeTags(c.Tags), NormalizeTags(o.Tags)) &&
		c.FeaturedImage == o.FeaturedImage &&
		c.SEO == o.SEO &&
		c.ReadTime == o.ReadTime &&
		c.Featured == o.Featured &&
		c.Sticky == o.Sticky &&
		c.Author == o.Author &&
		c.State == o.State &&
		sameTime(c.PublishAt, o.PublishAt) &&
		sameTime(c.PublishedAt, o.PublishedAt)
}

// NormalizeTags trims, drops empties, de-duplicates and sorts.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Summary is one entry of the public blog listing.
type Summary struct {
	ID          ContentID  `json:"id"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	Category    string     `json:"category"`
	ReadTime    string     `json:"readTime,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

type Category struct {
	ID   ContentID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug,omitempty"`
}

// Comment is what the comment endpoint echoes back for a new comment.
type Comment struct {
	ID       ContentID `json:"id,omitempty"`
	Text     string    `json:"comment_text"`
	ParentID *int64    `json:"parent_comment_id,omitempty"`
}

func ParseCommentID(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
