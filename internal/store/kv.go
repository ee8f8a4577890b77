package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// kvRepo implements KVRepo on the "kv" table.
type kvRepo struct {
	db      *sql.DB
	builder *entsql.DialectBuilder
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *kvRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query, args := r.builder.Select("value").
		From(entsql.Table(KVTable.Name)).
		Where(entsql.EQ("key", key)).
		Query()

	var value string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get key %q: %w", key, err)
	}
	return []byte(value), true, nil
}

func (r *kvRepo) Put(ctx context.Context, key string, value []byte) error {
	return r.put(ctx, r.db, key, value, time.Now().UTC())
}

func (r *kvRepo) PutMany(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}

	// Stable write order keeps statement logs readable.
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return r.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		for _, k := range keys {
			if err := r.put(ctx, tx, k, entries[k], now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *kvRepo) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		query, qargs := r.builder.Delete(KVTable.Name).
			Where(entsql.In("key", args...)).
			Query()
		if _, err := tx.ExecContext(ctx, query, qargs...); err != nil {
			return fmt.Errorf("delete keys: %w", err)
		}
		return nil
	})
}

func (r *kvRepo) put(ctx context.Context, ex execer, key string, value []byte, now time.Time) error {
	query, args := r.builder.Insert(KVTable.Name).
		Columns("key", "value", "updated_at").
		Values(key, string(value), now).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put key %q: %w", key, err)
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on error.
func (r *kvRepo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
