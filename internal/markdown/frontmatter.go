// Package markdown turns mmark-style markdown files into draft content.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/gomarkdown/markdown"
	"github.com/mmarkdown/mmark/v2/mast"
)

var delimiter = []byte("%%%")

// FrontMatter is the mmark title block plus the post fields it does not know about.
type FrontMatter struct {
	*mast.TitleData
	Excerpt  string   `toml:"excerpt"`
	Category string   `toml:"category"`
	Tags     []string `toml:"tags"`
	Image    string   `toml:"image"`
	Consumed int      `toml:"-"`
}

// HasFrontMatter reports whether md opens with a %%% block.
func HasFrontMatter(md []byte) bool {
	md = bytes.TrimLeft(markdown.NormalizeNewlines(md), "\n \t\r")
	return bytes.HasPrefix(md, delimiter)
}

// GetFrontMatter decodes the leading %%% TOML block. Consumed is the offset of
// the body in the normalised, left-trimmed input.
func GetFrontMatter(md []byte) (*FrontMatter, error) {
	md = markdown.NormalizeNewlines(md)
	md = bytes.TrimLeft(md, "\n \t\r")

	if len(md) < 2*len(delimiter) {
		return nil, fmt.Errorf("invalid front matter format")
	}

	if !bytes.HasPrefix(md, delimiter) {
		return nil, fmt.Errorf("invalid front matter format")
	}

	second := bytes.Index(md[len(delimiter):], delimiter)
	if second == -1 {
		return nil, fmt.Errorf("invalid front matter format")
	}

	end := second + 2*len(delimiter) + 1
	if end > len(md) {
		return nil, fmt.Errorf("invalid front matter format")
	}

	frontMatter := md[len(delimiter) : end-len(delimiter)-1]
	info := &FrontMatter{
		TitleData: &mast.TitleData{},
	}

	if _, err := toml.Decode(string(frontMatter), info); err != nil {
		return nil, fmt.Errorf("failed to decode front matter: %w", err)
	}

	if info.Language == "" {
		info.Language = "en"
	}
	info.Consumed = end

	return info, nil
}
