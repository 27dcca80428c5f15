package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/scorekit/core"
)

type fakeNode struct {
	name    string
	kind    Kind
	process func(records []*core.Record) ([]*core.Record, error)
}

func (n *fakeNode) Name() string { return n.name }
func (n *fakeNode) Kind() Kind   { return n.kind }
func (n *fakeNode) Process(_ context.Context, _ *core.ScoreContext, records []*core.Record) ([]*core.Record, error) {
	return n.process(records)
}

func TestPipeline_Run(t *testing.T) {
	var order []string
	p := &Pipeline{Nodes: []Node{
		&fakeNode{name: "a", kind: KindFilter, process: func(recs []*core.Record) ([]*core.Record, error) {
			order = append(order, "a")
			return recs[:1], nil
		}},
		&fakeNode{name: "b", kind: KindScore, process: func(recs []*core.Record) ([]*core.Record, error) {
			order = append(order, "b")
			return recs, nil
		}},
	}}

	recs := []*core.Record{core.NewRecord("1"), core.NewRecord("2")}
	out, err := p.Run(context.Background(), &core.ScoreContext{}, recs)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out) != 1 {
		t.Errorf("len(out) = %d, want 1 (filter truncated)", len(out))
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("node order = %v, want [a b]", order)
	}
}

func TestPipeline_Run_NodeError(t *testing.T) {
	wantErr := errors.New("sink unavailable")
	p := &Pipeline{Nodes: []Node{
		&fakeNode{name: "sink", kind: KindSink, process: func(recs []*core.Record) ([]*core.Record, error) {
			return nil, wantErr
		}},
	}}

	if _, err := p.Run(context.Background(), nil, []*core.Record{core.NewRecord("1")}); !errors.Is(err, wantErr) {
		t.Errorf("Run() error = %v, want %v", err, wantErr)
	}
}

func TestPartition(t *testing.T) {
	ok1 := core.NewRecord("ok")
	failed1 := core.NewRecord("failed")
	failed1.Err = errors.New("missing field")

	ok, failed := Partition([]*core.Record{ok1, nil, failed1})
	if len(ok) != 1 || ok[0].ID != "ok" {
		t.Errorf("ok = %v, want [ok]", ok)
	}
	if len(failed) != 1 || failed[0].ID != "failed" {
		t.Errorf("failed = %v, want [failed]", failed)
	}
}
