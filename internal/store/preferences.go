// internal/store/preferences.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/metrics"
	"lending-workers/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const preferenceCachePrefix = "investor:preference:"

// PreferenceStore persists investor preferences and keeps a read-through
// Redis copy. The cache is optional; a nil client disables it.
type PreferenceStore struct {
	db     *sql.DB
	cache  *redis.Client
	ttl    time.Duration
	logger logger.Logger
	now    func() time.Time
}

func NewPreferenceStore(db *sql.DB, cache *redis.Client, ttl time.Duration, log logger.Logger) *PreferenceStore {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &PreferenceStore{db: db, cache: cache, ttl: ttl, logger: log, now: time.Now}
}

func cacheKey(id string) string {
	return preferenceCachePrefix + id
}

// Create stores the preference and primes the cache.
func (s *PreferenceStore) Create(ctx context.Context, pref *models.InvestorPreference) (*models.InvestorPreference, error) {
	rec := *pref
	if rec.ID == "" {
		rec.ID = models.ID(uuid.NewString())
	}
	now := s.now()
	rec.CreatedAt = timestamp(now)

	doc, err := json.Marshal(&rec)
	if err != nil {
		return nil, fmt.Errorf("encode preference: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO preferences (id, user_id, doc, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET user_id = EXCLUDED.user_id, doc = EXCLUDED.doc`,
		rec.ID.String(), rec.UserID, doc, now)
	if err != nil {
		return nil, fmt.Errorf("insert preference: %w", err)
	}

	s.store(ctx, rec.ID.String(), doc)
	return &rec, nil
}

// Get reads through the cache. Cache failures are logged and fall back to
// Postgres.
func (s *PreferenceStore) Get(ctx context.Context, id string) (*models.InvestorPreference, error) {
	if pref, ok := s.lookup(ctx, id); ok {
		return pref, nil
	}

	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM preferences WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(ErrPreferenceNotFound, id)
		}
		return nil, fmt.Errorf("select preference %s: %w", id, err)
	}

	var pref models.InvestorPreference
	if err := json.Unmarshal(doc, &pref); err != nil {
		return nil, fmt.Errorf("decode preference %s: %w", id, err)
	}

	s.store(ctx, id, doc)
	return &pref, nil
}

func (s *PreferenceStore) lookup(ctx context.Context, id string) (*models.InvestorPreference, bool) {
	if s.cache == nil {
		return nil, false
	}

	val, err := s.cache.Get(ctx, cacheKey(id)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.PreferenceCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	case err != nil:
		metrics.PreferenceCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("preference cache read failed", map[string]interface{}{"preferenceId": id, "error": err})
		return nil, false
	}

	var pref models.InvestorPreference
	if err := json.Unmarshal(val, &pref); err != nil {
		metrics.PreferenceCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("discarding undecodable cached preference", map[string]interface{}{"preferenceId": id, "error": err})
		return nil, false
	}
	metrics.PreferenceCacheLookups.WithLabelValues("hit").Inc()
	return &pref, true
}

func (s *PreferenceStore) store(ctx context.Context, id string, doc []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(id), doc, s.ttl).Err(); err != nil {
		s.logger.Warn("preference cache write failed", map[string]interface{}{"preferenceId": id, "error": err})
	}
}
