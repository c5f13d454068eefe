package markdown

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

const WordsPerMinute = 200

// WordCount counts words in the text a reader would see: markup, link targets
// and image sources are not counted, code is.
func WordCount(md []byte) int {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := markdown.Parse(markdown.NormalizeNewlines(md), p)

	words := 0
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch n := node.(type) {
		case *ast.Text:
			words += len(strings.Fields(string(n.Literal)))
		case *ast.Code:
			words += len(strings.Fields(string(n.Literal)))
		case *ast.CodeBlock:
			words += len(strings.Fields(string(n.Literal)))
		}
		return ast.GoToNext
	})
	return words
}

// ReadTime formats the reading estimate for body, never less than a minute.
func ReadTime(body string) string {
	minutes := (WordCount([]byte(body)) + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
