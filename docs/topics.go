// Package docs holds the pcs manual, one markdown file per topic. The
// readme topic is the index.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

//go:embed *.md
var files embed.FS

// Index is the topic shown when none is asked for.
const Index = "readme"

// All expands to every topic in Read.
const All = "*"

// Topic returns the markdown of one topic.
func Topic(name string) (string, error) {
	content, err := files.ReadFile(name + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", name, err)
	}
	return string(content), nil
}

// Read returns the given topics one after the other.
func Read(names ...string) (string, error) {
	var b strings.Builder
	for _, name := range names {
		expanded := []string{name}
		if name == All {
			expanded = Topics()
		}
		for _, n := range expanded {
			content, err := Topic(n)
			if err != nil {
				return "", err
			}
			b.WriteString(content)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// Topics returns the sorted topic names, without the index.
func Topics() []string {
	entries, err := fs.Glob(files, "*.md")
	if err != nil {
		// the pattern is valid
		panic(err)
	}
	var names []string
	for _, e := range entries {
		if name := strings.TrimSuffix(e, ".md"); name != Index {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Titles returns the level 1 headings of a markdown document.
func Titles(markdown string) []string {
	source := []byte(markdown)
	root := goldmark.DefaultParser().Parse(text.NewReader(source))
	var res []string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering && h.Level == 1 {
			res = append(res, string(h.Text(source)))
		}
		return ast.WalkContinue, nil
	})
	return res
}
