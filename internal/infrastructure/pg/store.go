package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pricetruth-service/internal/application"
	"pricetruth-service/internal/domain"
	"pricetruth-service/internal/infrastructure/logx"
)

var (
	_ application.VerdictStore = (*Store)(nil)
	_ application.HistoryStore = (*Store)(nil)
)

// Store persists the current verdict per query key in verdict_cache
// (JSONB, replaced wholesale on every write) and appends each
// recomputation to verdict_history. When maxEntries > 0, writes trim the
// least recently touched cache rows past that bound; the history table
// is never trimmed.
type Store struct {
	db         *DB
	maxEntries int
}

func NewStore(db *DB, maxEntries int) *Store {
	return &Store{db: db, maxEntries: maxEntries}
}

func (s *Store) Get(ctx context.Context, key string) (domain.Verdict, bool, error) {
	// Touch and read in one statement so the trim sees recent readers.
	const q = `
        UPDATE verdict_cache SET touched_at=NOW()
        WHERE query_key=$1
        RETURNING verdict`
	var raw []byte
	err := s.db.Pool.QueryRow(ctx, q, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Verdict{}, false, nil
	}
	if err != nil {
		return domain.Verdict{}, false, fmt.Errorf("select verdict: %w", err)
	}
	var v domain.Verdict
	if err := json.Unmarshal(raw, &v); err != nil {
		return domain.Verdict{}, false, fmt.Errorf("decode verdict: %w", err)
	}
	return v, true, nil
}

func (s *Store) Put(ctx context.Context, key string, v domain.Verdict) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}
	log := logx.L().With(
		zap.String("repo", "verdict_store"),
		zap.String("operation", "Put"),
		zap.String("query_key", key),
	)
	log.Info("sql.tx_start")
	tx, err := s.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Error("sql.tx_begin_failed", zap.Error(err))
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const up = `
        INSERT INTO verdict_cache(query_key, verdict, updated_at, touched_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (query_key) DO UPDATE
          SET verdict=EXCLUDED.verdict, updated_at=EXCLUDED.updated_at, touched_at=NOW()`
	if _, err := tx.Exec(ctx, up, key, raw, v.UpdatedAt); err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return fmt.Errorf("upsert verdict: %w", err)
	}

	var price *string
	if v.Price != nil {
		p := v.Price.String()
		price = &p
	}
	const hist = `
        INSERT INTO verdict_history(query_key, status, price, currency, sources_count, agreeing_sources, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.Exec(ctx, hist, key, string(v.Status), price, v.Currency, v.SourcesCount, v.AgreeingSources, v.UpdatedAt); err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return fmt.Errorf("append history: %w", err)
	}

	if s.maxEntries > 0 {
		const trim = `
            DELETE FROM verdict_cache WHERE query_key IN (
                SELECT query_key FROM verdict_cache
                ORDER BY touched_at DESC OFFSET $1)`
		if _, err := tx.Exec(ctx, trim, s.maxEntries); err != nil {
			log.Error("sql.exec_failed", zap.Error(err))
			return fmt.Errorf("trim cache: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error("sql.tx_commit_failed", zap.Error(err))
		return err
	}
	log.Info("sql.tx_commit_success")
	return nil
}

func (s *Store) History(ctx context.Context, key string, limit int) ([]domain.HistoryEntry, error) {
	const q = `
        SELECT status, price::text, currency, sources_count, agreeing_sources, created_at
        FROM verdict_history
        WHERE query_key=$1
        ORDER BY created_at DESC, id DESC
        LIMIT $2`
	rows, err := s.db.Pool.Query(ctx, q, key, limit)
	if err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}
	defer rows.Close()

	out := make([]domain.HistoryEntry, 0, limit)
	for rows.Next() {
		var (
			e      domain.HistoryEntry
			status string
			price  *string
		)
		if err := rows.Scan(&status, &price, &e.Currency, &e.SourcesCount, &e.AgreeingSources, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.QueryKey = key
		e.Status = domain.VerdictStatus(status)
		if price != nil {
			p, err := decimal.NewFromString(*price)
			if err != nil {
				return nil, fmt.Errorf("parse history price: %w", err)
			}
			e.Price = &p
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Ping(ctx context.Context) error { return s.db.Ping(ctx) }
func (s *Store) Close()                         { s.db.Close() }
