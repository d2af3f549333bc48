// internal/search/reindex.go
package search

import (
	"context"
	"errors"
	"fmt"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/models"
)

// ApplicationLister is the source of truth the index is rebuilt from.
type ApplicationLister interface {
	ListAll(ctx context.Context) ([]models.Application, error)
}

type documentWriter interface {
	Put(ctx context.Context, app *models.Application) error
}

// Reindexer copies every stored application into the search index. Index
// writes on create and amend are best-effort, and finalizing or funding an
// application does not touch the index, so a periodic pass keeps the
// fundingStatus filter and the ranking pre-filter current.
type Reindexer struct {
	apps   ApplicationLister
	index  documentWriter
	logger logger.Logger
}

func NewReindexer(apps ApplicationLister, index *Index, log logger.Logger) *Reindexer {
	return newReindexer(apps, index, log)
}

func newReindexer(apps ApplicationLister, index documentWriter, log logger.Logger) *Reindexer {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Reindexer{apps: apps, index: index, logger: log}
}

// Run indexes all applications and returns how many were written. A failed
// document does not stop the pass; the failures are joined into the error.
func (r *Reindexer) Run(ctx context.Context) (int, error) {
	apps, err := r.apps.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list applications: %w", err)
	}

	var errs []error
	written := 0
	for i := range apps {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := r.index.Put(ctx, &apps[i]); err != nil {
			errs = append(errs, err)
			continue
		}
		written++
	}

	fields := map[string]interface{}{"applications": len(apps), "indexed": written}
	if len(errs) > 0 {
		fields["failed"] = len(apps) - written
		r.logger.Warn("reindex finished with failures", fields)
		return written, errors.Join(errs...)
	}
	r.logger.Info("reindex finished", fields)
	return written, nil
}
