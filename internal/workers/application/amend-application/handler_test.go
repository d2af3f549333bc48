// internal/workers/application/amend-application/handler_test.go
package amendapplication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/models"
	"lending-workers/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeApplications struct {
	apps map[string]*models.Application
}

func (f *fakeApplications) Merge(_ context.Context, id string, amendment *models.ApplicationAmendment) (*models.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrApplicationNotFound, id)
	}
	if app.IsFinalized() {
		return nil, fmt.Errorf("%w: %s", store.ErrApplicationFinalized, id)
	}
	amendment.Apply(app)
	app.UpdatedAt = "2026-03-02T10:00:00Z"
	return app, nil
}

type fakeIndexer struct {
	put int
	err error
}

func (f *fakeIndexer) Put(context.Context, *models.Application) error {
	if f.err != nil {
		return f.err
	}
	f.put++
	return nil
}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewTestLogger(t)
}

func createTestApplications() *fakeApplications {
	return &fakeApplications{apps: map[string]*models.Application{
		"app-1": {ID: "app-1", LoanAmount: 50000, Tags: models.PlainTags("Technology"), FundingStatus: models.FundingStatusPending},
		"app-2": {ID: "app-2", LoanAmount: 80000, FundingStatus: models.FundingStatusFinalized},
	}}
}

func decodeInput(t *testing.T, raw string) *Input {
	t.Helper()
	var input Input
	require.NoError(t, json.Unmarshal([]byte(raw), &input))
	return &input
}

// ==========================
// Core Functionality Tests
// ==========================

func TestExecute_MergesAndReindexes(t *testing.T) {
	apps := createTestApplications()
	index := &fakeIndexer{}
	h := NewHandler(createTestConfig(), apps, index, createTestLogger(t), nil)

	out, err := h.Execute(context.Background(), decodeInput(t,
		`{"applicationId":"app-1","amendment":{"tags":["Technology",{"tag":"Healthcare","isSpecial":true}],"interestRate":"9.5"}}`))
	require.NoError(t, err)

	assert.Equal(t, "app-1", out.ApplicationID)
	assert.Equal(t, []string{"Technology", "Healthcare"}, out.Tags)
	assert.Equal(t, "2026-03-02T10:00:00Z", out.UpdatedAt)
	assert.True(t, out.Reindexed)
	assert.Equal(t, 1, index.put)

	// Untouched fields survive the merge.
	assert.Equal(t, 50000.0, apps.apps["app-1"].LoanAmount.Float64())
	assert.Equal(t, 9.5, apps.apps["app-1"].InterestRate.Float64())
}

func TestExecute_ReindexFailureIsNotFatal(t *testing.T) {
	h := NewHandler(createTestConfig(), createTestApplications(), &fakeIndexer{err: errors.New("timeout")}, createTestLogger(t), nil)

	out, err := h.Execute(context.Background(), decodeInput(t, `{"applicationId":"app-1","amendment":{"loanPurpose":"inventory"}}`))
	require.NoError(t, err)
	assert.False(t, out.Reindexed)
}

// ==========================
// Error Handling Tests
// ==========================

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "missing id",
			input:    `{"amendment":{"loanPurpose":"x"}}`,
			wantCode: apperrors.ErrCodeInputValidationFailed,
		},
		{
			name:     "empty amendment",
			input:    `{"applicationId":"app-1","amendment":{}}`,
			wantCode: apperrors.ErrCodeInputValidationFailed,
		},
		{
			name:     "non-positive amount",
			input:    `{"applicationId":"app-1","amendment":{"loanAmount":0}}`,
			wantCode: apperrors.ErrCodeApplicationValidationFailed,
		},
		{
			name:     "malformed tag",
			input:    `{"applicationId":"app-1","amendment":{"tags":["Technology",12]}}`,
			wantCode: apperrors.ErrCodeApplicationValidationFailed,
		},
		{
			name:     "unknown application",
			input:    `{"applicationId":"app-9","amendment":{"loanPurpose":"x"}}`,
			wantCode: apperrors.ErrCodeApplicationNotFound,
		},
		{
			name:     "finalized application",
			input:    `{"applicationId":"app-2","amendment":{"loanPurpose":"x"}}`,
			wantCode: apperrors.ErrCodeApplicationFinalized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(createTestConfig(), createTestApplications(), nil, createTestLogger(t), nil)

			out, err := h.Execute(context.Background(), decodeInput(t, tt.input))
			require.Error(t, err)
			assert.Nil(t, out)

			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}
