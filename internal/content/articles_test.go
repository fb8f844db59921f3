package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tulznet/tulz/internal/obs"
)

const jsonArticle = `---
title: How to format JSON
description: A quick guide to pretty printing
category: Guides
author: Tulz Team
date: 2026-03-01
tags: [json, developer]
---
# Formatting JSON

Use the **JSON Formatter** to pretty print
minified payloads.

` + "```" + `
{"a":1}
` + "```" + `
`

func TestParseArticle(t *testing.T) {
	l := NewLoader(t.TempDir(), obs.Nop())

	article, err := l.Parse("format-json", []byte(jsonArticle))
	require.NoError(t, err)

	assert.Equal(t, "format-json", article.Slug)
	assert.Equal(t, "How to format JSON", article.Title)
	assert.Equal(t, "Guides", article.Category)
	assert.Equal(t, "Tulz Team", article.Author)
	assert.Equal(t, []string{"json", "developer"}, article.Tags)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), article.Date)

	assert.Equal(t, "Formatting JSON Use the JSON Formatter to pretty print minified payloads.", article.Content)
	assert.NotContains(t, article.Content, `{"a":1}`)
}

func TestParseArticleSlugOverride(t *testing.T) {
	l := NewLoader(t.TempDir(), obs.Nop())

	article, err := l.Parse("file-name", []byte("---\ntitle: T\nslug: custom\n---\nbody\n"))
	require.NoError(t, err)
	assert.Equal(t, "custom", article.Slug)
	assert.Equal(t, "body", article.Content)
}

func TestParseArticleErrors(t *testing.T) {
	l := NewLoader(t.TempDir(), obs.Nop())

	tests := []struct {
		name string
		doc  string
	}{
		{"missing title", "---\nauthor: x\n---\nbody"},
		{"no front matter", "# Just markdown"},
		{"unterminated", "---\ntitle: x\nbody"},
		{"bad yaml", "---\ntitle: [unclosed\n---\nbody"},
		{"bad date", "---\ntitle: x\ndate: yesterday\n---\nbody"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Parse("slug", []byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b-good.md"), []byte(jsonArticle), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a-bad.md"), []byte("no front matter"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	articles, err := NewLoader(dir, obs.Nop()).Load()
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "b-good", articles[0].Slug)
}

func TestLoadMissingDirectory(t *testing.T) {
	articles, err := NewLoader(filepath.Join(t.TempDir(), "missing"), obs.Nop()).Load()
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt("short", 10))
	assert.Equal(t, "hello", Excerpt("hello world", 8))

	long := strings.Repeat("word ", 200)
	got := Excerpt(long, MaxExcerptRunes)
	assert.LessOrEqual(t, len([]rune(got)), MaxExcerptRunes)
	assert.False(t, strings.HasSuffix(got, " "))
}
