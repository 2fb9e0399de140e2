package property

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/constructoken/openpay/core"
	"github.com/lib/pq"
	"github.com/tsenart/nap"
)

type store struct {
	db *nap.DB
}

func New(db *nap.DB) core.PropertyStore {
	return &store{db: db}
}

func (s *store) Get(ctx context.Context, key string, value any) (uint64, error) {
	var (
		raw     []byte
		version uint64
	)

	err := s.db.QueryRowContext(ctx, "SELECT value, version FROM properties WHERE key = $1", key).Scan(&raw, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}

	return version, json.Unmarshal(raw, value)
}

func (s *store) Set(ctx context.Context, key string, value any, version uint64) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if version == 0 {
		_, err := s.db.ExecContext(ctx, "INSERT INTO properties (key, value, version) VALUES ($1, $2, 1)", key, jsonValue)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return core.ErrOptimisticLock
		}

		return err
	}

	r, err := s.db.ExecContext(ctx, "UPDATE properties SET value = $1, version = $2 WHERE key = $3 AND version = $4", jsonValue, version+1, key, version)
	if err != nil {
		return fmt.Errorf("failed to set property: %w", err)
	}

	n, err := r.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if n == 0 {
		return core.ErrOptimisticLock
	}

	return nil
}
