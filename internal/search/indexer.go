package search

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/rs/zerolog/log"
	"github.com/tulznet/tulz/internal/catalog"
)

const (
	// maxFuzziness is the largest edit distance Bleve supports.
	maxFuzziness = 2

	// minFuzzyTermLength is the shortest term matched with edits.
	minFuzzyTermLength = 3

	// prefixBoost scales a field's weight for prefix (type-ahead) matches.
	prefixBoost = 0.5
)

// Indexer manages the in-memory Bleve index for the corpus.
type Indexer struct {
	bleveIndex bleve.Index
	entries    []catalog.Entry
	ordinals   map[string]int
	cfg        Config
	mu         sync.RWMutex
}

type weightedField struct {
	name   string
	weight float64
}

// NewIndexer creates an in-memory Bleve index over entries.
func NewIndexer(entries []catalog.Entry, cfg Config) (*Indexer, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	i := &Indexer{
		bleveIndex: index,
		entries:    make([]catalog.Entry, 0, len(entries)),
		ordinals:   make(map[string]int, len(entries)),
		cfg:        cfg,
	}

	if err := i.indexEntries(entries); err != nil {
		index.Close()
		return nil, err
	}

	return i, nil
}

// buildIndexMapping creates the Bleve index mapping.
func buildIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	for _, field := range []string{"title", "description", "category", "tags", "content"} {
		fm := bleve.NewTextFieldMapping()
		fm.Store = false
		fm.IncludeInAll = false
		docMapping.AddFieldMappingsAt(field, fm)
	}

	// Entry type: kept for filtering, never scored
	typeMapping := bleve.NewKeywordFieldMapping()
	typeMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("type", typeMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping

	return indexMapping
}

// indexEntries adds every entry in one batch. Entries with a duplicate id
// are skipped so ordinals stay unambiguous.
func (i *Indexer) indexEntries(entries []catalog.Entry) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.bleveIndex.NewBatch()

	for _, e := range entries {
		if _, dup := i.ordinals[e.ID]; dup {
			log.Warn().Str("id", e.ID).Msg("skipping duplicate search entry")
			continue
		}

		doc := map[string]interface{}{
			"title":       e.Title,
			"description": e.Description,
			"category":    e.Category,
			"tags":        e.Tags,
			"content":     e.Content,
			"type":        string(e.Type),
		}

		if err := batch.Index(e.ID, doc); err != nil {
			log.Warn().Err(err).Str("id", e.ID).Msg("failed to index entry")
			continue
		}

		i.ordinals[e.ID] = len(i.entries)
		i.entries = append(i.entries, e)
	}

	if err := i.bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index entries: %w", err)
	}

	return nil
}

// Search runs a weighted fuzzy query. Any Bleve failure degrades to an empty
// result.
func (i *Indexer) Search(q string, limit int) []Result {
	if i == nil {
		return nil
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.bleveIndex == nil || len(i.entries) == 0 {
		return nil
	}

	terms := queryTerms(q, i.cfg.MinMatchCharLength)
	if len(terms) == 0 {
		return nil
	}

	// Ask for every hit so ties can be ordered by corpus position before
	// truncating.
	req := bleve.NewSearchRequestOptions(i.buildQuery(terms), len(i.entries), 0, false)

	res, err := i.bleveIndex.Search(req)
	if err != nil {
		log.Warn().Err(err).Str("query", q).Msg("bleve search failed")
		return nil
	}

	results := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ord, ok := i.ordinals[hit.ID]
		if !ok {
			continue
		}
		results = append(results, Result{
			Entry:   i.entries[ord],
			Score:   hit.Score,
			Ordinal: ord,
		})
	}

	return rank(results, i.cfg.limit(limit))
}

// buildQuery requires every term to match at least one field. Within a
// field a term may match fuzzily or as a prefix; each alternative is boosted
// by the field weight.
func (i *Indexer) buildQuery(terms []string) query.Query {
	fields := i.weightedFields()

	perTerm := make([]query.Query, 0, len(terms))
	for _, term := range terms {
		fuzziness := fuzzinessFor(term, i.cfg.Threshold)

		alternatives := make([]query.Query, 0, 2*len(fields))
		for _, f := range fields {
			mq := bleve.NewMatchQuery(term)
			mq.SetField(f.name)
			mq.SetBoost(f.weight)
			mq.SetFuzziness(fuzziness)
			alternatives = append(alternatives, mq)

			pq := bleve.NewPrefixQuery(term)
			pq.SetField(f.name)
			pq.SetBoost(f.weight * prefixBoost)
			alternatives = append(alternatives, pq)
		}

		perTerm = append(perTerm, bleve.NewDisjunctionQuery(alternatives...))
	}

	if len(perTerm) == 1 {
		return perTerm[0]
	}
	return bleve.NewConjunctionQuery(perTerm...)
}

func (i *Indexer) weightedFields() []weightedField {
	w := i.cfg.Weights
	all := []weightedField{
		{"title", w.Title},
		{"description", w.Description},
		{"category", w.Category},
		{"tags", w.Tags},
		{"content", w.Content},
	}

	fields := all[:0]
	for _, f := range all {
		if f.weight > 0 {
			fields = append(fields, f)
		}
	}
	return fields
}

// fuzzinessFor allows roughly threshold edits per character of the term.
// Any term of minFuzzyTermLength runes or more gets at least one edit.
func fuzzinessFor(term string, threshold float64) int {
	n := len([]rune(term))
	if threshold <= 0 || n < minFuzzyTermLength {
		return 0
	}
	f := int(float64(n) * threshold)
	if f < 1 {
		f = 1
	}
	if f > maxFuzziness {
		return maxFuzziness
	}
	return f
}

// Len returns the number of indexed entries.
func (i *Indexer) Len() int {
	if i == nil {
		return 0
	}
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// Count returns the document count reported by Bleve.
func (i *Indexer) Count() (uint64, error) {
	if i == nil {
		return 0, nil
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.bleveIndex == nil {
		return 0, nil
	}

	docCount, err := i.bleveIndex.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}

	return docCount, nil
}

// Close closes the index and releases resources.
func (i *Indexer) Close() error {
	if i == nil {
		return nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.bleveIndex != nil {
		err := i.bleveIndex.Close()
		i.bleveIndex = nil
		return err
	}

	return nil
}
