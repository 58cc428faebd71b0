package collection

import (
	"context"
)

// Repository answers collection-existence questions for the workflows.
type Repository interface {
	// FindIDsIn returns the subset of ids that exist.
	FindIDsIn(ctx context.Context, ids []string) ([]string, error)
}
