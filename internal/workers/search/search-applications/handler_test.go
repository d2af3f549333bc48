// internal/workers/search/search-applications/handler_test.go
package searchapplications

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeSearcher struct {
	result *search.Result
	err    error
	got    search.Query
	calls  int
}

func (f *fakeSearcher) Search(_ context.Context, q search.Query) (*search.Result, error) {
	f.calls++
	f.got = q
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func createTestConfig() *Config {
	return &Config{IndexName: "applications", DefaultSize: 20, MaxSize: 50, Timeout: 5 * time.Second}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewTestLogger(t)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestExecute_ReturnsHits(t *testing.T) {
	fake := &fakeSearcher{result: &search.Result{
		Hits: []search.Hit{
			{ID: "app-1", Score: 2.5, Document: search.Document{ID: "app-1", CompanyName: "Acme", Tags: []string{"Technology"}}},
			{ID: "app-2", Score: 1.1, Document: search.Document{ID: "app-2", CompanyName: "Beta"}},
		},
		Total:    12,
		MaxScore: 2.5,
		Took:     3,
	}}
	h := NewHandler(createTestConfig(), fake, createTestLogger(t), nil)

	out, err := h.Execute(context.Background(), &Input{Query: search.Query{Keyword: "  acme ", Tags: []string{"Technology"}}})
	require.NoError(t, err)

	assert.Equal(t, int64(12), out.Total)
	assert.Equal(t, 2, out.Returned)
	assert.Equal(t, "app-1", out.Applications[0].ID)
	assert.Equal(t, 20, out.Size)
	assert.Equal(t, "acme", fake.got.Keyword)
	assert.Equal(t, 20, fake.got.Size)
}

func TestExecute_ClampsPageSize(t *testing.T) {
	fake := &fakeSearcher{result: &search.Result{}}
	h := NewHandler(createTestConfig(), fake, createTestLogger(t), nil)

	out, err := h.Execute(context.Background(), &Input{Query: search.Query{Size: 500, From: 40}})
	require.NoError(t, err)

	assert.Equal(t, 50, fake.got.Size)
	assert.Equal(t, 40, out.From)
	assert.NotNil(t, out.Applications)
	assert.Empty(t, out.Applications)
}

// ==========================
// Error Handling Tests
// ==========================

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name       string
		query      search.Query
		searchErr  error
		wantCode   apperrors.ErrorCode
		wantSearch bool
	}{
		{
			name:     "min exceeds max",
			query:    search.Query{MinAmount: 500000, MaxAmount: 1000},
			wantCode: apperrors.ErrCodeInvalidFilterFormat,
		},
		{
			name:     "unknown sort field",
			query:    search.Query{SortBy: "companyName"},
			wantCode: apperrors.ErrCodeInvalidFilterFormat,
		},
		{
			name:       "missing index",
			searchErr:  fmt.Errorf("%w: applications", search.ErrIndexNotFound),
			wantCode:   apperrors.ErrCodeIndexNotFound,
			wantSearch: true,
		},
		{
			name:       "deadline",
			searchErr:  context.DeadlineExceeded,
			wantCode:   apperrors.ErrCodeSearchTimeout,
			wantSearch: true,
		},
		{
			name:       "cluster error",
			searchErr:  fmt.Errorf("%w: 500", search.ErrSearchFailed),
			wantCode:   apperrors.ErrCodeSearchQueryFailed,
			wantSearch: true,
		},
		{
			name:       "transport error",
			searchErr:  errors.New("connection refused"),
			wantCode:   apperrors.ErrCodeSearchQueryFailed,
			wantSearch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeSearcher{err: tt.searchErr}
			h := NewHandler(createTestConfig(), fake, createTestLogger(t), nil)

			out, err := h.Execute(context.Background(), &Input{Query: tt.query})
			require.Error(t, err)
			assert.Nil(t, out)

			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.wantSearch, fake.calls == 1)
		})
	}
}
