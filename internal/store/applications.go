// internal/store/applications.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"lending-workers/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	selectApplication       = `SELECT doc FROM applications WHERE id = $1`
	selectApplicationLocked = `SELECT doc FROM applications WHERE id = $1 FOR UPDATE`
	updateApplication       = `UPDATE applications SET funding_status = $2, doc = $3, updated_at = $4 WHERE id = $1`
)

// ApplicationStore persists loan applications as JSONB documents.
type ApplicationStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewApplicationStore(db *sql.DB) *ApplicationStore {
	return &ApplicationStore{db: db, now: time.Now}
}

// Create assigns an id when none is given and stores a pending application.
func (s *ApplicationStore) Create(ctx context.Context, app *models.Application) (*models.Application, error) {
	rec := *app
	if rec.ID == "" {
		rec.ID = models.ID(uuid.NewString())
	}
	if rec.FundingStatus == "" {
		rec.FundingStatus = models.FundingStatusPending
	}
	now := s.now()
	rec.CreatedAt = timestamp(now)
	rec.UpdatedAt = rec.CreatedAt

	doc, err := json.Marshal(&rec)
	if err != nil {
		return nil, fmt.Errorf("encode application: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO applications (id, user_id, funding_status, doc, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID.String(), rec.UserID, rec.FundingStatus, doc, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, notFound(ErrDuplicateApplication, rec.ID.String())
		}
		return nil, fmt.Errorf("insert application: %w", err)
	}
	return &rec, nil
}

func (s *ApplicationStore) Get(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	if err := getDoc(ctx, s.db, selectApplication, &app, ErrApplicationNotFound, id); err != nil {
		return nil, err
	}
	return &app, nil
}

// ListOpen returns applications that can still receive bids, oldest first.
func (s *ApplicationStore) ListOpen(ctx context.Context) ([]models.Application, error) {
	return s.list(ctx,
		`SELECT doc FROM applications WHERE funding_status <> $1 ORDER BY created_at, id`,
		models.FundingStatusFinalized)
}

// ListOpenByIDs is ListOpen restricted to ids, keeping creation order.
func (s *ApplicationStore) ListOpenByIDs(ctx context.Context, ids []string) ([]models.Application, error) {
	if len(ids) == 0 {
		return []models.Application{}, nil
	}
	return s.list(ctx,
		`SELECT doc FROM applications WHERE id = ANY($1) AND funding_status <> $2 ORDER BY created_at, id`,
		pq.Array(ids), models.FundingStatusFinalized)
}

func (s *ApplicationStore) ListAll(ctx context.Context) ([]models.Application, error) {
	return s.list(ctx, `SELECT doc FROM applications ORDER BY created_at, id`)
}

func (s *ApplicationStore) list(ctx context.Context, query string, args ...interface{}) ([]models.Application, error) {
	apps := []models.Application{}
	err := listDocs(ctx, s.db, query, func(doc []byte) error {
		var app models.Application
		if err := json.Unmarshal(doc, &app); err != nil {
			return fmt.Errorf("decode application: %w", err)
		}
		apps = append(apps, app)
		return nil
	}, args...)
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// Merge applies an amendment to an application that is not finalized.
func (s *ApplicationStore) Merge(ctx context.Context, id string, amendment *models.ApplicationAmendment) (*models.Application, error) {
	var out *models.Application
	err := inTx(ctx, s.db, func(tx *sql.Tx) error {
		app, err := s.lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if app.IsFinalized() {
			return notFound(ErrApplicationFinalized, id)
		}
		amendment.Apply(app)
		if err := s.save(ctx, tx, app); err != nil {
			return err
		}
		if err := audit(ctx, tx, "application", id, "amended", amendment); err != nil {
			return err
		}
		out = app
		return nil
	})
	return out, err
}

// Finalize closes the application to further amendments. Finalizing an
// already finalized application is a no-op.
func (s *ApplicationStore) Finalize(ctx context.Context, id string) (*models.Application, error) {
	var out *models.Application
	err := inTx(ctx, s.db, func(tx *sql.Tx) error {
		app, err := s.finalizeTx(ctx, tx, id)
		out = app
		return err
	})
	return out, err
}

func (s *ApplicationStore) finalizeTx(ctx context.Context, tx *sql.Tx, id string) (*models.Application, error) {
	app, err := s.lock(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if app.IsFinalized() {
		return app, nil
	}
	app.FundingStatus = models.FundingStatusFinalized
	if err := s.save(ctx, tx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// AddFunding records amount against the application and returns the loan
// amount still outstanding.
func (s *ApplicationStore) AddFunding(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	var remaining decimal.Decimal
	err := inTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		remaining, err = s.addFundingTx(ctx, tx, id, amount)
		return err
	})
	return remaining, err
}

// addFundingTx moves amount from the outstanding loan amount to
// fundingReceived. The outstanding amount never drops below zero.
func (s *ApplicationStore) addFundingTx(ctx context.Context, tx *sql.Tx, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	app, err := s.lock(ctx, tx, id)
	if err != nil {
		return decimal.Zero, err
	}

	received := decimal.NewFromFloat(app.FundingReceived.Float64()).Add(amount)
	remaining := decimal.NewFromFloat(app.LoanAmount.Float64()).Sub(amount)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	app.FundingReceived = models.Number(received.InexactFloat64())
	app.LoanAmount = models.Number(remaining.InexactFloat64())

	if err := s.save(ctx, tx, app); err != nil {
		return decimal.Zero, err
	}
	return remaining, nil
}

func (s *ApplicationStore) lock(ctx context.Context, tx *sql.Tx, id string) (*models.Application, error) {
	var app models.Application
	if err := getDoc(ctx, tx, selectApplicationLocked, &app, ErrApplicationNotFound, id); err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *ApplicationStore) save(ctx context.Context, q querier, app *models.Application) error {
	now := s.now()
	app.UpdatedAt = timestamp(now)
	doc, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("encode application: %w", err)
	}
	if _, err := q.ExecContext(ctx, updateApplication, app.ID.String(), app.FundingStatus, doc, now); err != nil {
		return fmt.Errorf("update application %s: %w", app.ID, err)
	}
	return nil
}
