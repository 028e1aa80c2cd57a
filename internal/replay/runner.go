// Package replay applies a JSONL log of pool operations to a simulated
// vault and records the outcome of each one.
package replay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"reclamm/internal/model"
	"reclamm/internal/pool"
	"reclamm/internal/storage"
	"reclamm/internal/vault"
)

// Config controls replay behavior. Tokens and SwapFee seed a new vault and
// are ignored when persisted state exists.
type Config struct {
	BatchSize  int
	StateStore storage.StateStore
	Tokens     [2]model.TokenMeta
	SwapFee    *uint256.Int
	Pool       pool.PoolConfig
}

// Summary counts processed input lines.
type Summary struct {
	Total    int
	Applied  int
	Rejected int
	Skipped  int
	Failed   int
}

// Runner replays operations against a vault.
type Runner struct {
	cfg    Config
	sink   storage.Storage
	logger *zap.Logger
	vault  *vault.Vault
}

func NewRunner(cfg Config, sink storage.Storage, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	return &Runner{cfg: cfg, sink: sink, logger: logger}
}

// Vault returns the vault after Run has loaded or created it.
func (r *Runner) Vault() *vault.Vault {
	return r.vault
}

// Run replays the operations in a JSONL file.
func (r *Runner) Run(ctx context.Context, inputPath string) (Summary, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return Summary{}, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()
	return r.Replay(ctx, file)
}

// resumePoint tells Replay which input lines were already applied.
type resumePoint struct {
	seq       int
	timestamp uint64
}

// applied reports whether the line at seq with timestamp ts was applied by
// an earlier run. The persisted line number is exact; state written outside
// the runner only carries the pool timestamp.
func (p resumePoint) applied(seq int, ts uint64) bool {
	if p.seq > 0 {
		return seq <= p.seq
	}
	return p.timestamp > 0 && ts <= p.timestamp
}

func (r *Runner) load(ctx context.Context) (resumePoint, error) {
	if r.cfg.StateStore != nil {
		state, ok, err := r.cfg.StateStore.Load(ctx)
		if err != nil {
			return resumePoint{}, fmt.Errorf("load state: %w", err)
		}
		if ok {
			v, err := vault.Restore(r.cfg.Pool, state, r.logger)
			if err != nil {
				return resumePoint{}, err
			}
			r.vault = v
			r.logger.Info("state loaded",
				zap.Bool("initialized", state.Initialized),
				zap.Uint64("last_ts", state.Pool.LastTimestamp),
				zap.Int("replay_seq", state.ReplaySeq),
			)
			point := resumePoint{seq: state.ReplaySeq}
			if state.Initialized {
				point.timestamp = state.Pool.LastTimestamp
			}
			return point, nil
		}
	}

	v, err := vault.New(r.cfg.Tokens, r.cfg.Pool, r.cfg.SwapFee, r.logger)
	if err != nil {
		return resumePoint{}, err
	}
	r.vault = v
	return resumePoint{}, nil
}

// Replay applies operations read from in, one JSON object per line.
func (r *Runner) Replay(ctx context.Context, in io.Reader) (Summary, error) {
	resume, err := r.load(ctx)
	if err != nil {
		return Summary{}, err
	}

	scanner := bufio.NewScanner(in)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	batch := make([]model.OperationResult, 0, r.cfg.BatchSize)
	lastTs := resume.timestamp
	var summary Summary
	seq := 0

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		seq++
		summary.Total++
		if resume.seq > 0 && seq <= resume.seq {
			summary.Skipped++
			continue
		}

		var op model.Operation
		if err := json.Unmarshal(line, &op); err != nil {
			summary.Failed++
			r.logger.Warn("decode operation", zap.Int("seq", seq), zap.Error(err))
			continue
		}

		if resume.applied(seq, op.Timestamp) {
			summary.Skipped++
			continue
		}

		res := model.OperationResult{Seq: seq, Op: op.Op, Timestamp: op.Timestamp, Status: model.StatusOK}
		var applyErr error
		if op.Timestamp < lastTs {
			applyErr = fmt.Errorf("%w: %d before %d", ErrOutOfOrder, op.Timestamp, lastTs)
		} else {
			applyErr = apply(r.vault, op, &res)
		}

		if applyErr != nil {
			res = model.OperationResult{
				Seq:       seq,
				Op:        op.Op,
				Timestamp: op.Timestamp,
				Status:    model.StatusRejected,
				Error:     applyErr.Error(),
			}
			summary.Rejected++
			r.logger.Warn("operation rejected",
				zap.Int("seq", seq),
				zap.String("op", op.Op),
				zap.Uint64("ts", op.Timestamp),
				zap.Error(applyErr),
			)
		} else {
			summary.Applied++
			lastTs = op.Timestamp
			if r.vault.Pool().Initialized() {
				snap, err := r.vault.Snapshot(op.Timestamp)
				if err != nil {
					return summary, fmt.Errorf("snapshot after seq %d: %w", seq, err)
				}
				res.Snapshot = &snap
			}
		}
		batch = append(batch, res)

		if len(batch) >= r.cfg.BatchSize {
			if err := r.flush(ctx, batch, seq); err != nil {
				return summary, err
			}
			batch = batch[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("scan input: %w", err)
	}
	if err := r.flush(ctx, batch, max(seq, resume.seq)); err != nil {
		return summary, err
	}

	r.logger.Info("replay complete",
		zap.Int("total", summary.Total),
		zap.Int("applied", summary.Applied),
		zap.Int("rejected", summary.Rejected),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// flush writes results and persists vault state along with the last
// processed input line.
func (r *Runner) flush(ctx context.Context, batch []model.OperationResult, seq int) error {
	if len(batch) > 0 && r.sink != nil {
		if err := r.sink.PutResultBatch(ctx, batch); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
	}
	if r.cfg.StateStore != nil {
		state := r.vault.State()
		state.ReplaySeq = seq
		if err := r.cfg.StateStore.Save(ctx, state); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
	}
	return nil
}
