// Package stream 是流式打分适配器：把消息负载转换为输入记录，
// 调用共享的打分阶段，预测结果发给输出 Publisher，逐条失败发给死信 Publisher。
//
// 消息系统本身（Kafka、PubSub 等）对本包不可见：消费循环由调用方实现，
// 每条消息调用一次 Handle。franz-go 的接法见 examples/streaming。
package stream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/score"
)

// Publisher 是出站消息的抽象：输出流或死信流。
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Handler 处理单条消息：解码 → 打分 → 发布。
// 同一个 Handler（及其共享的 Stage）可被任意多个消费者协程并发调用。
type Handler struct {
	Stage *score.Stage

	// Output 预测结果流
	Output Publisher

	// DeadLetter 逐条失败流；为 nil 时失败消息被丢弃（仍计入返回值）
	DeadLetter Publisher
}

// envelope 是入站消息的 JSON 格式：{"id": "...", "fields": {...}}，
// 或直接是扁平的字段对象（此时没有 record ID）。
type envelope struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// deadLetterEnvelope 是死信消息格式：原始负载加错误说明。
// 负载本身是合法 JSON 时原样内嵌，否则编码为 JSON 字符串。
type deadLetterEnvelope struct {
	Error   string          `json:"error"`
	Code    string          `json:"code,omitempty"`
	Field   string          `json:"field,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Handle 处理一条消息。
//
// 返回 error 仅表示基础设施失败（负载不是 JSON、Publisher 不可用），
// 消费方应按自身策略重试或停止。打分的逐条失败不返回 error——
// 消息进入死信流，消费循环继续处理后续消息。
func (h *Handler) Handle(ctx context.Context, payload []byte) error {
	rec, err := decodeRecord(payload)
	if err != nil {
		return h.deadLetter(ctx, payload, core.NewDomainError(core.ModuleScore, core.ErrorCodeInvalidInput, err.Error()))
	}

	pred, err := h.Stage.Score(rec)
	if err != nil {
		if core.IsRecoverable(err) {
			return h.deadLetter(ctx, payload, err)
		}
		return err
	}

	out, err := json.Marshal(pred)
	if err != nil {
		return fmt.Errorf("marshal prediction: %w", err)
	}
	if err := h.Output.Publish(ctx, rec.ID, out); err != nil {
		return fmt.Errorf("publish prediction: %w", err)
	}
	return nil
}

// deadLetter 把失败消息连同错误说明发到死信流。
func (h *Handler) deadLetter(ctx context.Context, payload []byte, cause error) error {
	if h.DeadLetter == nil {
		return nil
	}
	env := deadLetterEnvelope{
		Error: cause.Error(),
	}
	if json.Valid(payload) {
		env.Payload = json.RawMessage(payload)
	} else {
		quoted, err := json.Marshal(string(payload))
		if err != nil {
			return fmt.Errorf("marshal dead letter payload: %w", err)
		}
		env.Payload = quoted
	}
	if domainErr := core.GetDomainError(cause); domainErr != nil {
		env.Code = domainErr.Code
		env.Field = domainErr.Field
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal dead letter: %w", err)
	}
	if err := h.DeadLetter.Publish(ctx, "", data); err != nil {
		return fmt.Errorf("publish dead letter: %w", err)
	}
	return nil
}

// decodeRecord 解码入站消息为输入记录。
func decodeRecord(payload []byte) (*core.Record, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	if env.Fields != nil {
		rec := core.NewRecord(env.ID)
		rec.Fields = env.Fields
		return rec, nil
	}

	// 扁平字段对象
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	rec := core.NewRecord("")
	if id, ok := fields["id"].(string); ok {
		rec.ID = id
		delete(fields, "id")
	}
	rec.Fields = fields
	return rec, nil
}
