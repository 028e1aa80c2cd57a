package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"reclamm/internal/storage"
	"reclamm/internal/storage/postgres"
)

// openStateStore prefers a local state file and falls back to Postgres.
// The returned close func is never nil.
func openStateStore(ctx context.Context, stateFile, pgDSN, name string) (storage.StateStore, *postgres.Store, func(), error) {
	if stateFile != "" {
		return &storage.FileStateStore{Path: stateFile}, nil, func() {}, nil
	}
	if pgDSN == "" {
		return nil, nil, func() {}, fmt.Errorf("state-file or pg-dsn is required")
	}

	store, err := postgres.NewStore(ctx, pgDSN)
	if err != nil {
		return nil, nil, func() {}, fmt.Errorf("connect postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, nil, func() {}, err
	}
	return &storage.DBStateStore{Store: store, Name: name}, store, store.Close, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
