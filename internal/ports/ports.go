package ports

import (
	"context"

	"github.com/FlosMume/CareMind/internal/domain"
)

// RecordRepository caches resolved drug records between runs.
type RecordRepository interface {
	Lookup(ctx context.Context, names []string) (map[string]domain.DrugRecord, error)
	Save(ctx context.Context, rec domain.DrugRecord) error
}

// RecordExporter writes the resolved record set for downstream consumers.
type RecordExporter interface {
	Export(records []domain.DrugRecord) ([]byte, error)
}
