package stream

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/model"
	"github.com/rushteam/scorekit/score"
)

type capturePublisher struct {
	keys     []string
	payloads [][]byte
	err      error
}

func (p *capturePublisher) Publish(_ context.Context, key string, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.payloads = append(p.payloads, payload)
	return nil
}

func testStreamHandler(t *testing.T) (*Handler, *capturePublisher, *capturePublisher) {
	t.Helper()
	stage, err := score.NewStage(&model.Spec{
		Name:      "babyweight",
		Version:   "v1",
		Kind:      model.KindLinear,
		Output:    "weight_pounds",
		Intercept: 7.5619,
		Predictors: []model.Predictor{
			{Name: "year", Type: model.FieldNumeric, Coefficient: 0.00036683},
			{Name: "plurality", Type: model.FieldNumeric, Coefficient: -2.0459},
			{Name: "mother_married", Type: model.FieldBoolean, Coefficient: 0.2784},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	out := &capturePublisher{}
	dlq := &capturePublisher{}
	return &Handler{Stage: stage, Output: out, DeadLetter: dlq}, out, dlq
}

func TestHandler_Handle(t *testing.T) {
	h, out, dlq := testStreamHandler(t)

	msg := `{"id":"rec-1","fields":{"year":2000,"plurality":1,"mother_married":true}}`
	if err := h.Handle(context.Background(), []byte(msg)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if len(out.payloads) != 1 || len(dlq.payloads) != 0 {
		t.Fatalf("out=%d dlq=%d, want 1/0", len(out.payloads), len(dlq.payloads))
	}
	if out.keys[0] != "rec-1" {
		t.Errorf("publish key = %q, want rec-1", out.keys[0])
	}
	var pred core.Prediction
	if err := json.Unmarshal(out.payloads[0], &pred); err != nil {
		t.Fatal(err)
	}
	if math.Abs(pred.Predicted-6.52806) > 1e-3 {
		t.Errorf("predicted = %v, want 6.52806 (±1e-3)", pred.Predicted)
	}
}

func TestHandler_Handle_FlatPayload(t *testing.T) {
	h, out, _ := testStreamHandler(t)

	msg := `{"id":"rec-2","year":2000,"plurality":1,"mother_married":true}`
	if err := h.Handle(context.Background(), []byte(msg)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(out.keys) != 1 || out.keys[0] != "rec-2" {
		t.Errorf("keys = %v, want [rec-2]", out.keys)
	}
}

func TestHandler_Handle_DeadLetter(t *testing.T) {
	h, out, dlq := testStreamHandler(t)

	// 缺 plurality：进死信，不返回 error（消费循环继续）
	msg := `{"id":"rec-3","fields":{"year":2000,"mother_married":true}}`
	if err := h.Handle(context.Background(), []byte(msg)); err != nil {
		t.Fatalf("Handle() error = %v, per-record failure must not stop the consumer", err)
	}
	if len(out.payloads) != 0 || len(dlq.payloads) != 1 {
		t.Fatalf("out=%d dlq=%d, want 0/1", len(out.payloads), len(dlq.payloads))
	}

	var env struct {
		Code    string          `json:"code"`
		Field   string          `json:"field"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(dlq.payloads[0], &env); err != nil {
		t.Fatal(err)
	}
	if env.Code != core.ErrorCodeMissingField || env.Field != "plurality" {
		t.Errorf("dead letter code/field = %s/%s, want MISSING_FIELD/plurality", env.Code, env.Field)
	}
	if string(env.Payload) != msg {
		t.Errorf("dead letter must carry the original payload")
	}
}

func TestHandler_Handle_NotJSON(t *testing.T) {
	h, out, dlq := testStreamHandler(t)

	if err := h.Handle(context.Background(), []byte("not json")); err != nil {
		t.Fatalf("Handle() error = %v, undecodable payload goes to dead letter", err)
	}
	if len(out.payloads) != 0 || len(dlq.payloads) != 1 {
		t.Fatalf("out=%d dlq=%d, want 0/1", len(out.payloads), len(dlq.payloads))
	}

	// 非 JSON 负载以 JSON 字符串形式保留在死信里
	var env struct {
		Code    string `json:"code"`
		Payload string `json:"payload"`
	}
	if err := json.Unmarshal(dlq.payloads[0], &env); err != nil {
		t.Fatalf("dead letter not decodable: %v", err)
	}
	if env.Code != core.ErrorCodeInvalidInput {
		t.Errorf("dead letter code = %s, want INVALID_INPUT", env.Code)
	}
	if env.Payload != "not json" {
		t.Errorf("dead letter payload = %q, want the original text", env.Payload)
	}
}

func TestHandler_Handle_PublisherFailure(t *testing.T) {
	h, out, _ := testStreamHandler(t)
	out.err = errors.New("broker unavailable")

	msg := `{"id":"rec-4","fields":{"year":2000,"plurality":1,"mother_married":true}}`
	if err := h.Handle(context.Background(), []byte(msg)); err == nil {
		t.Error("Handle() error = nil, want infrastructure error surfaced to the consumer")
	}
}
