package markdown

import (
	"bytes"
	"errors"
	"os"

	"github.com/gomarkdown/markdown"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/model"
)

var ErrEmptyDocument = errors.New("document is empty")

// Import builds a new draft from a markdown document. The front matter is
// optional; when present it fills the metadata fields.
func Import(md []byte) (model.Content, error) {
	md = bytes.TrimLeft(markdown.NormalizeNewlines(md), "\n \t\r")
	if len(bytes.TrimSpace(md)) == 0 {
		return model.Content{}, ErrEmptyDocument
	}

	c := model.Content{State: model.StateDraft}
	body := md

	if HasFrontMatter(md) {
		info, err := GetFrontMatter(md)
		if err != nil {
			return model.Content{}, err
		}
		body = md[info.Consumed:]

		c.Title = info.Title
		c.Excerpt = info.Excerpt
		c.Category = info.Category
		c.FeaturedImage = info.Image
		c.Tags = model.NormalizeTags(append(info.Tags, info.Keyword...))
	}

	c.Body = string(bytes.TrimSpace(body))
	c.ReadTime = ReadTime(c.Body)
	return c, nil
}

func ImportFile(path string) (model.Content, error) {
	md, err := os.ReadFile(path)
	if err != nil {
		return model.Content{}, err
	}
	return Import(md)
}
