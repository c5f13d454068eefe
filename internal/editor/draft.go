package editor

import (
	"slices"
	"strings"
	"time"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/markdown"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/model"
)

func readTimeFor(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return markdown.ReadTime(body)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func (e *Editor) SetTitle(title string) {
	e.mutate(func(c *model.Content) { c.Title = title })
}

func (e *Editor) SetExcerpt(excerpt string) {
	e.mutate(func(c *model.Content) { c.Excerpt = excerpt })
}

func (e *Editor) SetBody(body string) {
	e.mutate(func(c *model.Content) { c.Body = body })
}

func (e *Editor) SetCategory(category string) {
	e.mutate(func(c *model.Content) { c.Category = category })
}

func (e *Editor) SetTags(tags []string) {
	e.mutate(func(c *model.Content) { c.Tags = slices.Clone(tags) })
}

func (e *Editor) AddTag(tag string) {
	e.mutate(func(c *model.Content) { c.Tags = append(c.Tags, tag) })
}

func (e *Editor) RemoveTag(tag string) {
	tag = strings.TrimSpace(tag)
	e.mutate(func(c *model.Content) {
		c.Tags = slices.DeleteFunc(c.Tags, func(t string) bool { return t == tag })
	})
}

func (e *Editor) SetFeaturedImage(url string) {
	e.mutate(func(c *model.Content) { c.FeaturedImage = url })
}

func (e *Editor) SetSEO(seo model.SEO) {
	e.mutate(func(c *model.Content) { c.SEO = seo })
}

func (e *Editor) SetFeatured(featured bool) {
	e.mutate(func(c *model.Content) { c.Featured = featured })
}

func (e *Editor) SetSticky(sticky bool) {
	e.mutate(func(c *model.Content) { c.Sticky = sticky })
}

// SetReadTime pins the read time. An empty value goes back to computing it from the body.
func (e *Editor) SetReadTime(readTime string) {
	e.mu.Lock()
	e.manualRead = readTime != ""
	e.mu.Unlock()
	e.mutate(func(c *model.Content) { c.ReadTime = readTime })
}

// Restore copies the editable fields of c into the draft, as one edit.
func (e *Editor) Restore(c model.Content) {
	e.mutate(func(f *model.Content) {
		f.Title = c.Title
		f.Excerpt = c.Excerpt
		f.Body = c.Body
		f.Category = c.Category
		f.Tags = slices.Clone(c.Tags)
		f.FeaturedImage = c.FeaturedImage
		f.SEO = c.SEO
		f.Featured = c.Featured
		f.Sticky = c.Sticky
		f.Author = c.Author
	})
}
