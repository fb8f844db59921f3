/*
Package content loads blog articles for the search corpus.

Articles are Markdown files with a YAML front matter block:

	---
	title: How to format JSON
	description: A quick guide
	category: Guides
	author: Tulz Team
	date: 2026-03-01
	tags: [json, developer]
	---
	Body in **Markdown**...

Only a plain-text excerpt of the body is kept for indexing.
*/
package content

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tulznet/tulz/internal/catalog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// MaxExcerptRunes bounds the indexed article text.
const MaxExcerptRunes = 500

var frontMatterDelim = []byte("---")

type frontMatter struct {
	Slug        string   `yaml:"slug"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Author      string   `yaml:"author"`
	Date        string   `yaml:"date"`
	Tags        []string `yaml:"tags"`
}

// Loader reads articles from a directory.
type Loader struct {
	dir    string
	logger zerolog.Logger
	md     goldmark.Markdown
}

// NewLoader creates a loader for dir.
func NewLoader(dir string, logger zerolog.Logger) *Loader {
	return &Loader{
		dir:    dir,
		logger: logger,
		md:     goldmark.New(),
	}
}

// Load parses every *.md file in the directory, sorted by file name. Files
// that fail to parse are skipped with a warning.
func (l *Loader) Load() ([]catalog.ArticleRecord, error) {
	paths, err := filepath.Glob(filepath.Join(l.dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	sort.Strings(paths)

	articles := make([]catalog.ArticleRecord, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable article")
			continue
		}

		slug := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		article, err := l.Parse(slug, data)
		if err != nil {
			l.logger.Warn().Err(err).Str("path", path).Msg("skipping malformed article")
			continue
		}
		articles = append(articles, article)
	}

	return articles, nil
}

// Parse turns one Markdown document into an article record. defaultSlug is
// used when the front matter does not set one.
func (l *Loader) Parse(defaultSlug string, data []byte) (catalog.ArticleRecord, error) {
	meta, body, err := splitFrontMatter(data)
	if err != nil {
		return catalog.ArticleRecord{}, err
	}

	var fm frontMatter
	if len(meta) > 0 {
		if err := yaml.Unmarshal(meta, &fm); err != nil {
			return catalog.ArticleRecord{}, fmt.Errorf("invalid front matter: %w", err)
		}
	}
	if strings.TrimSpace(fm.Title) == "" {
		return catalog.ArticleRecord{}, fmt.Errorf("article %s: missing title", defaultSlug)
	}

	slug := fm.Slug
	if slug == "" {
		slug = defaultSlug
	}

	article := catalog.ArticleRecord{
		Slug:        slug,
		Title:       fm.Title,
		Description: fm.Description,
		Category:    fm.Category,
		Author:      fm.Author,
		Tags:        fm.Tags,
		Content:     Excerpt(l.plainText(body), MaxExcerptRunes),
	}

	if fm.Date != "" {
		date, err := parseDate(fm.Date)
		if err != nil {
			return catalog.ArticleRecord{}, fmt.Errorf("article %s: %w", slug, err)
		}
		article.Date = date
	}

	return article, nil
}

// plainText extracts the visible text of a Markdown body.
func (l *Loader) plainText(source []byte) string {
	doc := l.md.Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				buf.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			buf.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(buf.String()), " ")
}

// Excerpt truncates s to at most max runes, cutting on a word boundary.
func Excerpt(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}

func splitFrontMatter(data []byte) (meta, body []byte, err error) {
	trimmed := bytes.TrimLeft(data, "\uFEFF \t\r\n")
	if !bytes.HasPrefix(trimmed, frontMatterDelim) {
		return nil, data, nil
	}

	rest := trimmed[len(frontMatterDelim):]
	end := bytes.Index(rest, append([]byte("\n"), frontMatterDelim...))
	if end < 0 {
		return nil, nil, fmt.Errorf("unterminated front matter")
	}

	meta = rest[:end]
	body = rest[end+1+len(frontMatterDelim):]
	return meta, body, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
