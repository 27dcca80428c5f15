// Package sink 把打分结果交给外部存储：预测结果的所有权在此转移给下游。
package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pipeline"
	"github.com/rushteam/scorekit/pkg/utils"
)

// StoreNode 把已打分记录的 Prediction 序列化为 JSON 写入 KeyValueStore。
// key 为 KeyPrefix + record ID。失败记录（Record.Err 非空）不落盘，原样透传
// 给下游（如死信 Node）。存储写入失败是 Node 级错误，整批上报。
type StoreNode struct {
	Store core.KeyValueStore

	// KeyPrefix 预测结果 key 前缀，如 "prediction:babyweight:v1:"
	KeyPrefix string

	// TTL 秒；0 表示不过期
	TTL int

	// RankKey 非空时同时把 (record ID, predicted) 写入该有序集合，
	// 供预测值 TopN 查询（如风险最高的 N 条记录）
	RankKey string
}

func (n *StoreNode) Name() string        { return "sink.store" }
func (n *StoreNode) Kind() pipeline.Kind { return pipeline.KindSink }

func (n *StoreNode) Process(
	ctx context.Context,
	_ *core.ScoreContext,
	records []*core.Record,
) ([]*core.Record, error) {
	if n.Store == nil || len(records) == 0 {
		return records, nil
	}

	kvs := make(map[string][]byte)
	for _, rec := range records {
		if rec == nil || rec.Err != nil || rec.Prediction == nil {
			continue
		}
		data, err := json.Marshal(rec.Prediction)
		if err != nil {
			return nil, fmt.Errorf("marshal prediction %s: %w", rec.ID, err)
		}
		kvs[n.KeyPrefix+rec.ID] = data
	}
	if len(kvs) == 0 {
		return records, nil
	}

	if err := n.Store.BatchSet(ctx, kvs, n.TTL); err != nil {
		return nil, fmt.Errorf("sink batch set: %w", err)
	}

	if n.RankKey != "" {
		for _, rec := range records {
			if rec == nil || rec.Err != nil || rec.Prediction == nil {
				continue
			}
			if err := n.Store.ZAdd(ctx, n.RankKey, rec.Prediction.Predicted, rec.ID); err != nil {
				return nil, fmt.Errorf("sink zadd: %w", err)
			}
		}
	}

	for _, rec := range records {
		if rec == nil || rec.Err != nil || rec.Prediction == nil {
			continue
		}
		rec.PutLabel("sink", utils.Label{Value: n.Store.Name(), Source: "sink"})
	}
	return records, nil
}
