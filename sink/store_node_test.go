package sink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/store"
)

func TestStoreNode_PersistsScoredRecords(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()
	node := &StoreNode{Store: ms, KeyPrefix: "prediction:", RankKey: "rank"}

	scored := core.NewRecord("a")
	scored.Prediction = &core.Prediction{RecordID: "a", Predicted: 0.9, Model: "m", Version: "v1"}
	failed := core.NewRecord("b")
	failed.Err = errors.New("missing field")

	out, err := node.Process(context.Background(), nil, []*core.Record{scored, failed})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 2 {
		t.Errorf("len(out) = %d, want 2 (failed records pass through)", len(out))
	}

	data, err := ms.Get(context.Background(), "prediction:a")
	if err != nil {
		t.Fatalf("scored record not persisted: %v", err)
	}
	var pred core.Prediction
	if err := json.Unmarshal(data, &pred); err != nil {
		t.Fatal(err)
	}
	if pred.Predicted != 0.9 {
		t.Errorf("persisted predicted = %v, want 0.9", pred.Predicted)
	}

	if _, err := ms.Get(context.Background(), "prediction:b"); !core.IsStoreNotFound(err) {
		t.Errorf("failed record must not be persisted, err = %v", err)
	}

	score, err := ms.ZScore(context.Background(), "rank", "a")
	if err != nil || score != 0.9 {
		t.Errorf("rank zset score = %v, %v, want 0.9", score, err)
	}

	if lbl, ok := scored.Labels["sink"]; !ok || lbl.Value != "memory" {
		t.Errorf("sink label = %+v", scored.Labels)
	}
}

func TestStoreNode_NilStoreIsNoop(t *testing.T) {
	node := &StoreNode{}
	rec := core.NewRecord("a")
	if _, err := node.Process(context.Background(), nil, []*core.Record{rec}); err != nil {
		t.Fatal(err)
	}
}
