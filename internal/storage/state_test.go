package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/holiman/uint256"

	"reclamm/internal/model"
)

func testVaultState() model.VaultState {
	return model.VaultState{
		Tokens: [2]model.TokenMeta{
			{Address: "0xa", Symbol: "AAA", Decimals: 18},
			{Address: "0xb", Symbol: "BBB", Decimals: 6, Rate: uint256.NewInt(1e18)},
		},
		Balances:          model.NewBalances(uint256.NewInt(1000), uint256.NewInt(2000)),
		TotalSupply:       uint256.NewInt(1500),
		SwapFeePercentage: uint256.NewInt(3e15),
		Initialized:       true,
		Pool: model.PoolState{
			LastVirtualBalances: model.NewBalances(uint256.NewInt(10), uint256.NewInt(20)),
			LastTimestamp:       1700000000,
			CenterednessMargin:  uint256.NewInt(2e17),
			DailyPriceShiftBase: uint256.NewInt(999991977472743464),
			PriceRatioState: model.PriceRatioState{
				StartFourthRootPriceRatio: uint256.NewInt(1414213562373095048),
				EndFourthRootPriceRatio:   uint256.NewInt(1414213562373095048),
				StartTime:                 1700000000,
				EndTime:                   1700000000,
			},
		},
	}
}

func TestFileStateStoreRoundTrip(t *testing.T) {
	store := &FileStateStore{Path: filepath.Join(t.TempDir(), "nested", "state.json")}
	ctx := context.Background()

	_, ok, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load missing state: %v", err)
	}
	if ok {
		t.Fatalf("expected no state before save")
	}

	want := testVaultState()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save state: %v", err)
	}
	got, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load state: ok=%v err=%v", ok, err)
	}
	if got.UpdatedAt == "" {
		t.Fatalf("expected updated_at to be set")
	}
	got.UpdatedAt = ""
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("state mismatch:\n got %+v\nwant %+v", got, want)
	}
	if _, err := os.Stat(store.Path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("tmp file left behind: %v", err)
	}
}

func TestFileStateStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := (&FileStateStore{Path: path}).Load(context.Background()); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNilStateStores(t *testing.T) {
	var file *FileStateStore
	if _, ok, err := file.Load(context.Background()); ok || err != nil {
		t.Fatalf("nil file store: ok=%v err=%v", ok, err)
	}
	var db *DBStateStore
	if err := db.Save(context.Background(), testVaultState()); err != nil {
		t.Fatalf("nil db store: %v", err)
	}
}

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.jsonl")
	sink := Multi{NewJsonlStorage(path)}
	ctx := context.Background()

	first := []model.OperationResult{
		{Seq: 1, Op: model.OpInitialize, Timestamp: 10, Status: model.StatusOK, Bpt: uint256.NewInt(42)},
		{Seq: 2, Op: model.OpSwap, Timestamp: 11, Status: model.StatusRejected, Error: "swap: amount out bigger than balance"},
	}
	second := []model.OperationResult{
		{Seq: 3, Op: model.OpSwap, Timestamp: 12, Status: model.StatusOK, AmountIn: uint256.NewInt(5), AmountOut: uint256.NewInt(4)},
	}
	if err := sink.PutResultBatch(ctx, first); err != nil {
		t.Fatalf("put first batch: %v", err)
	}
	if err := sink.PutResultBatch(ctx, nil); err != nil {
		t.Fatalf("put empty batch: %v", err)
	}
	if err := sink.PutResultBatch(ctx, second); err != nil {
		t.Fatalf("put second batch: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open results: %v", err)
	}
	defer file.Close()

	var got []model.OperationResult
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var r model.OperationResult
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		got = append(got, r)
	}
	want := append(first, second...)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("results mismatch:\n got %+v\nwant %+v", got, want)
	}
}
