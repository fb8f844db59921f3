package catalog

import "time"

// EntryType tags a search corpus entry.
type EntryType string

const (
	EntryTool EntryType = "tool"
	EntryBlog EntryType = "blog"
)

// ArticleRecord is a blog article as exposed to search.
type ArticleRecord struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Author      string    `json:"author,omitempty"`
	Date        time.Time `json:"date"`
	Content     string    `json:"content,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

// Entry is one document of the search index artifact. Tools and articles
// share this shape so the query engine treats them uniformly.
type Entry struct {
	ID          string    `json:"id"`
	Type        EntryType `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	URL         string    `json:"url"`
	Content     string    `json:"content,omitempty"`
	Author      string    `json:"author,omitempty"`
	Date        string    `json:"date,omitempty"`
}

// Entry converts the tool to a corpus entry.
func (t ToolRecord) Entry() Entry {
	return Entry{
		ID:          t.ID,
		Type:        EntryTool,
		Title:       t.Name,
		Description: t.Description,
		Category:    string(t.Category),
		Tags:        nonNil(t.Tags),
		URL:         t.Href,
	}
}

// Entry converts the article to a corpus entry.
func (a ArticleRecord) Entry() Entry {
	e := Entry{
		ID:          "blog/" + a.Slug,
		Type:        EntryBlog,
		Title:       a.Title,
		Description: a.Description,
		Category:    a.Category,
		Tags:        nonNil(a.Tags),
		URL:         "/blog/" + a.Slug,
		Content:     a.Content,
		Author:      a.Author,
	}
	if !a.Date.IsZero() {
		e.Date = a.Date.Format("2006-01-02")
	}
	return e
}

// BuildEntries merges tools and articles into a single corpus. Tools come
// first in catalog order, then articles in the given order; this order is the
// tie-break order for equally scored search hits.
func BuildEntries(c *Catalog, articles []ArticleRecord) []Entry {
	entries := make([]Entry, 0, c.Len()+len(articles))
	for _, t := range c.Tools() {
		entries = append(entries, t.Entry())
	}
	for _, a := range articles {
		entries = append(entries, a.Entry())
	}
	return entries
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
