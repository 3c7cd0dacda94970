// Package search provides a keyword index over table descriptions,
// used as a deterministic fallback when model-based table selection
// yields nothing usable.
package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Index is an in-memory full-text index keyed by table name.
type Index struct {
	index bleve.Index
}

// New builds the index from table descriptions. Tables without a
// description are still indexed by name.
func New(descriptions map[string]string) (*Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create table index: %w", err)
	}

	for table, desc := range descriptions {
		doc := map[string]interface{}{
			"table":       table,
			"description": desc,
		}
		if err := index.Index(table, doc); err != nil {
			index.Close()
			return nil, fmt.Errorf("index table %s: %w", table, err)
		}
	}
	return &Index{index: index}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	tableMapping := bleve.NewDocumentMapping()

	tableField := bleve.NewTextFieldMapping()
	tableField.Analyzer = keyword.Name
	tableField.Store = true
	tableField.Index = true
	tableMapping.AddFieldMappingsAt("table", tableField)

	descField := bleve.NewTextFieldMapping()
	descField.Analyzer = standard.Name
	descField.Store = false
	descField.Index = true
	tableMapping.AddFieldMappingsAt("description", descField)

	indexMapping.DefaultMapping = tableMapping
	return indexMapping
}

// Lookup returns the table whose description best matches the
// question, or ok=false when nothing scores at all.
func (i *Index) Lookup(question string) (string, bool) {
	q := bleve.NewMatchQuery(question)

	searchRequest := bleve.NewSearchRequest(q)
	searchRequest.Size = 1

	searchResult, err := i.index.Search(searchRequest)
	if err != nil || len(searchResult.Hits) == 0 {
		return "", false
	}
	return searchResult.Hits[0].ID, true
}

// Close releases the index.
func (i *Index) Close() error {
	return i.index.Close()
}
