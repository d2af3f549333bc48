// internal/workers/bidding/record-funding/handler_test.go
package recordfunding

import (
	"context"
	"database/sql"
	"testing"
	"time"

	apperrors "lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/models"
	"lending-workers/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const (
	finalizedBidDoc = `{"id":"bid-1","userId":"inv-1","applicationId":"app-1","loanAmount":"30000","status":"finalized","fundingReceived":"25000"}`
	completedBidDoc = `{"id":"bid-3","userId":"inv-1","applicationId":"app-1","loanAmount":"30000","status":"completed","fundingReceived":"30000"}`
	appDoc          = `{"id":"app-1","companyName":"Acme","loanAmount":50000,"tags":[],"fundingReceived":0,"fundingStatus":"finalized"}`
)

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second, AllowOverFunding: true}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewTestLogger(t)
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTestHandler(t *testing.T, cfg *Config) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := setupMockDB(t)
	bids := store.NewBidStore(db, store.NewApplicationStore(db))
	return NewHandler(cfg, bids, createTestLogger(t), nil), mock
}

func docRows(doc string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"doc"}).AddRow([]byte(doc))
}

func expectFunding(mock sqlmock.Sqlmock, bidDoc string, status string) {
	mock.ExpectBegin()
	mock.ExpectQuery("FROM bids WHERE id .* FOR UPDATE").WithArgs("bid-1").WillReturnRows(docRows(bidDoc))
	mock.ExpectExec("UPDATE bids").
		WithArgs("bid-1", status, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM applications WHERE id .* FOR UPDATE").WithArgs("app-1").WillReturnRows(docRows(appDoc))
	mock.ExpectExec("UPDATE applications").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_log").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
}

// ==========================
// Core Functionality Tests
// ==========================

func TestExecute_PartialFunding(t *testing.T) {
	h, mock := newTestHandler(t, createTestConfig())
	expectFunding(mock, finalizedBidDoc, models.BidStatusFinalized)

	out, err := h.Execute(context.Background(), &Input{BidID: "bid-1", Amount: decimal.RequireFromString("3000")})
	require.NoError(t, err)

	assert.Equal(t, models.BidStatusFinalized, out.Status)
	assert.False(t, out.Completed)
	assert.Equal(t, "28000", out.FundingReceived.String())
	assert.Equal(t, "2000", out.Outstanding.String())
	assert.Equal(t, "47000", out.ApplicationRemaining.String())
	assert.Equal(t, "app-1", out.ApplicationID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_CompletesAndFlagsExcess(t *testing.T) {
	h, mock := newTestHandler(t, createTestConfig())
	expectFunding(mock, finalizedBidDoc, models.BidStatusCompleted)

	out, err := h.Execute(context.Background(), &Input{BidID: "bid-1", Amount: decimal.RequireFromString("7000")})
	require.NoError(t, err)

	assert.Equal(t, models.BidStatusCompleted, out.Status)
	assert.True(t, out.Completed)
	assert.True(t, out.OverFunded)
	assert.Equal(t, "2000", out.Excess.String())
	assert.True(t, out.Outstanding.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ interface{}) (string, error) {
	p.events = append(p.events, eventType)
	return "msg-1", nil
}

func TestExecute_PublishesFundingEvents(t *testing.T) {
	t.Run("partial payment", func(t *testing.T) {
		h, mock := newTestHandler(t, createTestConfig())
		pub := &recordingPublisher{}
		h.WithEvents(pub)
		expectFunding(mock, finalizedBidDoc, models.BidStatusFinalized)

		_, err := h.Execute(context.Background(), &Input{BidID: "bid-1", Amount: decimal.RequireFromString("3000")})
		require.NoError(t, err)
		assert.Equal(t, []string{"bid.funded"}, pub.events)
	})

	t.Run("completing payment", func(t *testing.T) {
		h, mock := newTestHandler(t, createTestConfig())
		pub := &recordingPublisher{}
		h.WithEvents(pub)
		expectFunding(mock, finalizedBidDoc, models.BidStatusCompleted)

		_, err := h.Execute(context.Background(), &Input{BidID: "bid-1", Amount: decimal.RequireFromString("5000")})
		require.NoError(t, err)
		assert.Equal(t, []string{"bid.funded", "bid.completed"}, pub.events)
	})
}

// ==========================
// Error Handling Tests
// ==========================

func TestExecute_RejectsOverFundingWhenDisabled(t *testing.T) {
	cfg := createTestConfig()
	cfg.AllowOverFunding = false
	h, mock := newTestHandler(t, cfg)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bids WHERE id .* FOR UPDATE").WithArgs("bid-1").WillReturnRows(docRows(finalizedBidDoc))
	mock.ExpectRollback()

	_, err := h.Execute(context.Background(), &Input{BidID: "bid-1", Amount: decimal.RequireFromString("7000")})
	require.Error(t, err)

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeBidValidationFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "exceeds outstanding 5000")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_ExactOutstandingAllowedWhenOverFundingDisabled(t *testing.T) {
	cfg := createTestConfig()
	cfg.AllowOverFunding = false
	h, mock := newTestHandler(t, cfg)
	expectFunding(mock, finalizedBidDoc, models.BidStatusCompleted)

	out, err := h.Execute(context.Background(), &Input{BidID: "bid-1", Amount: decimal.RequireFromString("5000")})
	require.NoError(t, err)
	assert.True(t, out.Completed)
	assert.False(t, out.OverFunded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		setup    func(mock sqlmock.Sqlmock)
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "missing bid id",
			input:    &Input{Amount: decimal.NewFromInt(10)},
			setup:    func(sqlmock.Sqlmock) {},
			wantCode: apperrors.ErrCodeInputValidationFailed,
		},
		{
			name:     "non-positive amount",
			input:    &Input{BidID: "bid-1", Amount: decimal.NewFromInt(-10)},
			setup:    func(sqlmock.Sqlmock) {},
			wantCode: apperrors.ErrCodeBidValidationFailed,
		},
		{
			name:  "already completed",
			input: &Input{BidID: "bid-3", Amount: decimal.NewFromInt(10)},
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("FOR UPDATE").WithArgs("bid-3").WillReturnRows(docRows(completedBidDoc))
				mock.ExpectRollback()
			},
			wantCode: apperrors.ErrCodeBidAlreadyFinalized,
		},
		{
			name:  "unknown bid",
			input: &Input{BidID: "bid-9", Amount: decimal.NewFromInt(10)},
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("FOR UPDATE").WithArgs("bid-9").WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			wantCode: apperrors.ErrCodeBidNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock := newTestHandler(t, createTestConfig())
			tt.setup(mock)

			out, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, out)

			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
