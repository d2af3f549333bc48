// internal/store/bids.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"lending-workers/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	selectBid       = `SELECT doc FROM bids WHERE id = $1`
	selectBidLocked = `SELECT doc FROM bids WHERE id = $1 FOR UPDATE`
	updateBid       = `UPDATE bids SET status = $2, funding_received = $3, doc = $4, updated_at = $5 WHERE id = $1`
)

// BidStore persists investor bids. Finalizing and funding a bid also
// update the application it belongs to, in the same transaction.
type BidStore struct {
	db           *sql.DB
	applications *ApplicationStore
	now          func() time.Time
}

func NewBidStore(db *sql.DB, applications *ApplicationStore) *BidStore {
	return &BidStore{db: db, applications: applications, now: time.Now}
}

// Create stores a new pending bid with no funding received.
func (s *BidStore) Create(ctx context.Context, bid *models.Bid) (*models.Bid, error) {
	rec := *bid
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Status = models.BidStatusPending
	rec.FundingReceived = decimal.Zero
	now := s.now()
	rec.CreatedAt = timestamp(now)
	rec.UpdatedAt = rec.CreatedAt

	doc, err := json.Marshal(&rec)
	if err != nil {
		return nil, fmt.Errorf("encode bid: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO bids (id, application_id, user_id, status, loan_amount, funding_received, doc, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.ApplicationID.String(), rec.UserID, rec.Status, rec.LoanAmount, rec.FundingReceived, doc, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert bid: %w", err)
	}
	return &rec, nil
}

func (s *BidStore) Get(ctx context.Context, id string) (*models.Bid, error) {
	var bid models.Bid
	if err := getDoc(ctx, s.db, selectBid, &bid, ErrBidNotFound, id); err != nil {
		return nil, err
	}
	return &bid, nil
}

func (s *BidStore) ListByApplication(ctx context.Context, applicationID string) ([]models.Bid, error) {
	return s.list(ctx, `SELECT doc FROM bids WHERE application_id = $1 ORDER BY created_at, id`, applicationID)
}

func (s *BidStore) ListByUser(ctx context.Context, userID string) ([]models.Bid, error) {
	return s.list(ctx, `SELECT doc FROM bids WHERE user_id = $1 ORDER BY created_at, id`, userID)
}

func (s *BidStore) list(ctx context.Context, query string, args ...interface{}) ([]models.Bid, error) {
	bids := []models.Bid{}
	err := listDocs(ctx, s.db, query, func(doc []byte) error {
		var bid models.Bid
		if err := json.Unmarshal(doc, &bid); err != nil {
			return fmt.Errorf("decode bid: %w", err)
		}
		bids = append(bids, bid)
		return nil
	}, args...)
	if err != nil {
		return nil, err
	}
	return bids, nil
}

// Finalize accepts a pending bid and closes its application.
func (s *BidStore) Finalize(ctx context.Context, id string) (*models.Bid, *models.Application, error) {
	var (
		bid *models.Bid
		app *models.Application
	)
	err := inTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		if bid, err = s.lock(ctx, tx, id); err != nil {
			return err
		}
		if bid.Status != models.BidStatusPending {
			return fmt.Errorf("%w: %s is %s", ErrBidNotPending, id, bid.Status)
		}

		bid.Status = models.BidStatusFinalized
		if err := s.save(ctx, tx, bid); err != nil {
			return err
		}
		if app, err = s.applications.finalizeTx(ctx, tx, bid.ApplicationID.String()); err != nil {
			return err
		}
		return audit(ctx, tx, "bid", id, "finalized", map[string]interface{}{
			"applicationId": bid.ApplicationID,
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return bid, app, nil
}

// RecordFunding adds amount to the bid. The bid completes once funding
// reaches its loan amount; anything beyond that is reported as excess. The
// application's outstanding amount is reduced by the full payment.
// RecordFunding adds a payment to a bid and reduces the outstanding amount of
// its application. Unless allowExcess is set, a payment larger than the
// locked bid's outstanding amount fails with ErrBidOverFunded.
func (s *BidStore) RecordFunding(ctx context.Context, id string, amount decimal.Decimal, allowExcess bool) (*models.FundingResult, error) {
	var result *models.FundingResult
	err := inTx(ctx, s.db, func(tx *sql.Tx) error {
		bid, err := s.lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if bid.Status == models.BidStatusCompleted {
			return fmt.Errorf("%w: %s", ErrBidCompleted, id)
		}
		if !allowExcess && amount.GreaterThan(bid.Outstanding()) {
			return fmt.Errorf("%w: amount %s exceeds outstanding %s", ErrBidOverFunded, amount, bid.Outstanding())
		}

		res := applyFunding(bid, amount)
		if err := s.save(ctx, tx, bid); err != nil {
			return err
		}
		res.Bid = *bid

		appID := bid.ApplicationID.String()
		remaining, err := s.applications.addFundingTx(ctx, tx, appID, amount)
		if err != nil {
			return err
		}
		res.ApplicationRemaining = remaining

		if err := audit(ctx, tx, "bid", id, "funded", map[string]interface{}{
			"amount":    amount.String(),
			"completed": res.Completed,
			"excess":    res.Excess.String(),
		}); err != nil {
			return err
		}
		result = res
		return nil
	})
	return result, err
}

// applyFunding mutates bid and reports completion and over-funding.
func applyFunding(bid *models.Bid, amount decimal.Decimal) *models.FundingResult {
	bid.FundingReceived = bid.FundingReceived.Add(amount)

	res := &models.FundingResult{ApplicationID: bid.ApplicationID, Excess: decimal.Zero}
	if bid.FundingReceived.GreaterThanOrEqual(bid.LoanAmount) {
		bid.Status = models.BidStatusCompleted
		res.Completed = true
		if excess := bid.FundingReceived.Sub(bid.LoanAmount); excess.IsPositive() {
			res.OverFunded = true
			res.Excess = excess
		}
	}
	return res
}

func (s *BidStore) lock(ctx context.Context, tx *sql.Tx, id string) (*models.Bid, error) {
	var bid models.Bid
	if err := getDoc(ctx, tx, selectBidLocked, &bid, ErrBidNotFound, id); err != nil {
		return nil, err
	}
	return &bid, nil
}

func (s *BidStore) save(ctx context.Context, q querier, bid *models.Bid) error {
	now := s.now()
	bid.UpdatedAt = timestamp(now)
	doc, err := json.Marshal(bid)
	if err != nil {
		return fmt.Errorf("encode bid: %w", err)
	}
	if _, err := q.ExecContext(ctx, updateBid, bid.ID, bid.Status, bid.FundingReceived, doc, now); err != nil {
		return fmt.Errorf("update bid %s: %w", bid.ID, err)
	}
	return nil
}
