// internal/store/bids_test.go
package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	apperrors "lending-workers/internal/common/errors"
	"lending-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pendingBidDoc   = `{"id":"bid-1","userId":"inv-1","applicationId":"app-1","loanAmount":"30000","interestRate":10,"tenure":24,"status":"pending","fundingReceived":"0"}`
	finalizedBidDoc = `{"id":"bid-1","userId":"inv-1","applicationId":"app-1","loanAmount":"30000","interestRate":10,"tenure":24,"status":"finalized","fundingReceived":"25000"}`
	completedBidDoc = `{"id":"bid-1","userId":"inv-1","applicationId":"app-1","loanAmount":"30000","interestRate":10,"tenure":24,"status":"completed","fundingReceived":"30000"}`
)

func newBidStore(db *sql.DB) *BidStore {
	s := NewBidStore(db, newApplicationStore(db))
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestBidStore_Create(t *testing.T) {
	db, mock := newMockDB(t)
	s := newBidStore(db)

	amount := decimal.RequireFromString("30000")
	mock.ExpectExec("INSERT INTO bids").
		WithArgs(sqlmock.AnyArg(), "app-1", "inv-1", models.BidStatusPending, amount, decimal.Zero, sqlmock.AnyArg(), fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	bid, err := s.Create(context.Background(), &models.Bid{
		UserID:        "inv-1",
		ApplicationID: "app-1",
		LoanAmount:    amount,
		Status:        models.BidStatusCompleted,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, bid.ID)
	assert.Equal(t, models.BidStatusPending, bid.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBidStore_GetAndList(t *testing.T) {
	db, mock := newMockDB(t)
	s := newBidStore(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT doc FROM bids WHERE id").WithArgs("bid-1").WillReturnRows(docRows(pendingBidDoc))
	mock.ExpectQuery("SELECT doc FROM bids WHERE id").WithArgs("bid-9").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("WHERE application_id").WithArgs("app-1").WillReturnRows(docRows(pendingBidDoc, completedBidDoc))
	mock.ExpectQuery("WHERE user_id").WithArgs("inv-2").WillReturnRows(docRows())

	bid, err := s.Get(ctx, "bid-1")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("30000").Equal(bid.LoanAmount))

	_, err = s.Get(ctx, "bid-9")
	assert.ErrorIs(t, err, ErrBidNotFound)

	bids, err := s.ListByApplication(ctx, "app-1")
	require.NoError(t, err)
	assert.Len(t, bids, 2)

	bids, err = s.ListByUser(ctx, "inv-2")
	require.NoError(t, err)
	assert.NotNil(t, bids)
	assert.Empty(t, bids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBidStore_Finalize(t *testing.T) {
	db, mock := newMockDB(t)
	s := newBidStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bids WHERE id .* FOR UPDATE").WithArgs("bid-1").WillReturnRows(docRows(pendingBidDoc))
	mock.ExpectExec("UPDATE bids").
		WithArgs("bid-1", models.BidStatusFinalized, decimal.Zero, sqlmock.AnyArg(), fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM applications WHERE id .* FOR UPDATE").WithArgs("app-1").WillReturnRows(docRows(openAppDoc))
	mock.ExpectExec("UPDATE applications").
		WithArgs("app-1", models.FundingStatusFinalized, sqlmock.AnyArg(), fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs("bid", "bid-1", "finalized", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	bid, app, err := s.Finalize(context.Background(), "bid-1")
	require.NoError(t, err)
	assert.Equal(t, models.BidStatusFinalized, bid.Status)
	assert.True(t, app.IsFinalized())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBidStore_Finalize_NotPending(t *testing.T) {
	db, mock := newMockDB(t)
	s := newBidStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("bid-1").WillReturnRows(docRows(finalizedBidDoc))
	mock.ExpectRollback()

	_, _, err := s.Finalize(context.Background(), "bid-1")
	assert.ErrorIs(t, err, ErrBidNotPending)
	assert.Equal(t, "BID_ALREADY_FINALIZED", string(ToStandardError(err, "bid-1").Code))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBidStore_RecordFunding(t *testing.T) {
	db, mock := newMockDB(t)
	s := newBidStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bids WHERE id .* FOR UPDATE").WithArgs("bid-1").WillReturnRows(docRows(finalizedBidDoc))
	mock.ExpectExec("UPDATE bids").
		WithArgs("bid-1", models.BidStatusCompleted, decimal.RequireFromString("32000"), sqlmock.AnyArg(), fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM applications WHERE id .* FOR UPDATE").WithArgs("app-1").WillReturnRows(docRows(openAppDoc))
	mock.ExpectExec("UPDATE applications").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs("bid", "bid-1", "funded", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	res, err := s.RecordFunding(context.Background(), "bid-1", decimal.RequireFromString("7000"), true)
	require.NoError(t, err)

	assert.True(t, res.Completed)
	assert.True(t, res.OverFunded)
	assert.Equal(t, "2000", res.Excess.String())
	assert.Equal(t, "43000", res.ApplicationRemaining.String())
	assert.Equal(t, models.BidStatusCompleted, res.Bid.Status)
	assert.Equal(t, "2026-03-01T09:30:00Z", res.Bid.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBidStore_RecordFunding_Completed(t *testing.T) {
	db, mock := newMockDB(t)
	s := newBidStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("bid-1").WillReturnRows(docRows(completedBidDoc))
	mock.ExpectRollback()

	_, err := s.RecordFunding(context.Background(), "bid-1", decimal.NewFromInt(1), true)
	assert.ErrorIs(t, err, ErrBidCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBidStore_RecordFunding_ExcessCheckedUnderLock(t *testing.T) {
	db, mock := newMockDB(t)
	s := newBidStore(db)

	// The locked row already carries 25000 of 30000, so 7000 overshoots.
	mock.ExpectBegin()
	mock.ExpectQuery("FROM bids WHERE id .* FOR UPDATE").WithArgs("bid-1").WillReturnRows(docRows(finalizedBidDoc))
	mock.ExpectRollback()

	res, err := s.RecordFunding(context.Background(), "bid-1", decimal.RequireFromString("7000"), false)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrBidOverFunded)
	assert.Contains(t, err.Error(), "exceeds outstanding 5000")

	stdErr := ToStandardError(err, "bid-1")
	assert.Equal(t, apperrors.ErrCodeBidValidationFailed, stdErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyFunding(t *testing.T) {
	tests := []struct {
		name       string
		received   string
		amount     string
		status     string
		completed  bool
		overFunded bool
		excess     string
	}{
		{"partial", "0", "10000", models.BidStatusPending, false, false, "0"},
		{"exact", "20000", "10000", models.BidStatusCompleted, true, false, "0"},
		{"over", "25000", "10000", models.BidStatusCompleted, true, true, "5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bid := &models.Bid{
				ApplicationID:   "app-1",
				LoanAmount:      decimal.RequireFromString("30000"),
				FundingReceived: decimal.RequireFromString(tt.received),
				Status:          models.BidStatusPending,
			}
			res := applyFunding(bid, decimal.RequireFromString(tt.amount))
			assert.Equal(t, tt.status, bid.Status)
			assert.Equal(t, tt.completed, res.Completed)
			assert.Equal(t, tt.overFunded, res.OverFunded)
			assert.Equal(t, tt.excess, res.Excess.String())
			assert.Equal(t, models.ID("app-1"), res.ApplicationID)
		})
	}
}
