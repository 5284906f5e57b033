package ports

import (
	"context"

	"setsplit/domain/dataset"
)

// DatasetReader loads a rectangular dataset whose first row is the header
type DatasetReader interface {
	ReadDataset(ctx context.Context, path string) (*dataset.Dataset, error)
}

// DatasetWriter persists a dataset, e.g. the input annotated with set numbers
type DatasetWriter interface {
	WriteDataset(ctx context.Context, path string, d *dataset.Dataset) error
}
