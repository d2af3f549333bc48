// internal/search/reindex_test.go
package search

import (
	"context"
	"errors"
	"testing"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	apps []models.Application
	err  error
}

func (s stubLister) ListAll(context.Context) ([]models.Application, error) {
	return s.apps, s.err
}

type stubWriter struct {
	put  []string
	fail map[string]bool
}

func (w *stubWriter) Put(_ context.Context, app *models.Application) error {
	if w.fail[app.ID.String()] {
		return ErrSearchFailed
	}
	w.put = append(w.put, app.ID.String())
	return nil
}

func TestReindexer_Run(t *testing.T) {
	apps := []models.Application{
		{ID: "app-1", FundingStatus: models.FundingStatusFinalized},
		{ID: "app-2"},
		{ID: "app-3"},
	}

	t.Run("all written", func(t *testing.T) {
		w := &stubWriter{}
		n, err := newReindexer(stubLister{apps: apps}, w, logger.NewTestLogger(t)).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, []string{"app-1", "app-2", "app-3"}, w.put)
	})

	t.Run("failures do not stop the pass", func(t *testing.T) {
		w := &stubWriter{fail: map[string]bool{"app-2": true}}
		n, err := newReindexer(stubLister{apps: apps}, w, logger.NewTestLogger(t)).Run(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSearchFailed)
		assert.Equal(t, 2, n)
		assert.Equal(t, []string{"app-1", "app-3"}, w.put)
	})

	t.Run("list error", func(t *testing.T) {
		listErr := errors.New("connection refused")
		n, err := newReindexer(stubLister{err: listErr}, &stubWriter{}, nil).Run(context.Background())
		assert.ErrorIs(t, err, listErr)
		assert.Zero(t, n)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		w := &stubWriter{}
		n, err := newReindexer(stubLister{apps: apps}, w, nil).Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, n)
		assert.Empty(t, w.put)
	})
}
