package source

import (
	"context"

	"github.com/FlosMume/CareMind/internal/domain"
)

// Result is the raw payload a source yields for one drug name. Exactly one
// of the two members is populated: free label text to run through the
// section extractor, or pre-structured fields used as-is.
type Result struct {
	Text   string
	Fields *domain.FieldSet
}

// Source is a single upstream strategy in the fallback chain (online
// scrape, structured API, offline documents). Fetch returns nil when the
// source holds nothing for the name; errors are absorbed by the resolver
// and treated the same way.
type Source interface {
	Name() string
	Fetch(ctx context.Context, drugName string) (*Result, error)
}
