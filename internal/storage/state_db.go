package storage

import (
	"context"

	"reclamm/internal/model"
	"reclamm/internal/storage/postgres"
)

// DBStateStore stores state in the reclamm_pool_state table.
type DBStateStore struct {
	Store *postgres.Store
	Name  string
}

func (s *DBStateStore) Load(ctx context.Context) (model.VaultState, bool, error) {
	if s == nil || s.Store == nil {
		return model.VaultState{}, false, nil
	}
	return s.Store.LoadState(ctx, s.Name)
}

func (s *DBStateStore) Save(ctx context.Context, state model.VaultState) error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.SaveState(ctx, s.Name, state)
}

// DBStorage writes operation results to the reclamm_operations table.
type DBStorage struct {
	Store *postgres.Store
	Name  string
}

func (s *DBStorage) PutResultBatch(ctx context.Context, results []model.OperationResult) error {
	return s.Store.InsertOperations(ctx, s.Name, results)
}
