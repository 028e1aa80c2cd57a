package storage

import (
	"context"

	"reclamm/internal/model"
)

// Storage defines a sink for replayed operation results.
type Storage interface {
	PutResultBatch(ctx context.Context, results []model.OperationResult) error
}

// Multi fans a batch out to several sinks in order.
type Multi []Storage

func (m Multi) PutResultBatch(ctx context.Context, results []model.OperationResult) error {
	for _, s := range m {
		if err := s.PutResultBatch(ctx, results); err != nil {
			return err
		}
	}
	return nil
}
