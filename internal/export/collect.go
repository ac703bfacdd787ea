package export

import (
	"context"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// BatchSize is how many results are read per query while exporting
const BatchSize = 1000

// ResultLister pages through stored results
type ResultLister interface {
	List(ctx context.Context, filter domain.ResultFilter) ([]*domain.Result, int, error)
}

// Collect reads every result matching filter, ignoring its Limit and
// Offset, in batches of BatchSize.
func Collect(ctx context.Context, results ResultLister, filter domain.ResultFilter) ([]*domain.Result, error) {
	var all []*domain.Result

	filter.Limit = BatchSize
	filter.Offset = 0

	for {
		batch, total, err := results.List(ctx, filter)
		if err != nil {
			return nil, err
		}

		all = append(all, batch...)

		if len(batch) < BatchSize || len(all) >= total {
			return all, nil
		}

		filter.Offset += len(batch)
	}
}
