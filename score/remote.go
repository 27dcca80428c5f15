package score

import (
	"context"
	"fmt"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pipeline"
	"github.com/rushteam/scorekit/pkg/conv"
	"github.com/rushteam/scorekit/pkg/utils"
	"github.com/rushteam/scorekit/service"
)

// RemoteNode 是通过 RPC 调用外部模型服务的打分 Node。
// 本地 Stage 只覆盖 linear/logistic；由 TF Serving、TorchServe 等
// 托管的模型走此 Node，记录到特征的映射仍在 Scorekit 侧完成。
type RemoteNode struct {
	Service service.ScoringService

	// ModelName 用于 label 标注；为空时使用 "remote"
	ModelName string
}

func (n *RemoteNode) Name() string        { return "score.remote" }
func (n *RemoteNode) Kind() pipeline.Kind { return pipeline.KindScore }

func (n *RemoteNode) Process(
	ctx context.Context,
	_ *core.ScoreContext,
	records []*core.Record,
) ([]*core.Record, error) {
	if n.Service == nil || len(records) == 0 {
		return records, nil
	}

	// 收集待打分记录的特征（只取可转数值的字段，远程服务不做强转）
	valid := make([]*core.Record, 0, len(records))
	features := make([]map[string]float64, 0, len(records))
	for _, rec := range records {
		if rec == nil || rec.Err != nil {
			continue
		}
		valid = append(valid, rec)
		features = append(features, conv.MapToFloat64(rec.Fields))
	}
	if len(valid) == 0 {
		return records, nil
	}

	// 批量预测；服务级失败是 Node 级错误，由调用方决定整批重试
	resp, err := n.Service.Predict(ctx, &service.PredictRequest{Features: features})
	if err != nil {
		return nil, fmt.Errorf("remote predict: %w", err)
	}
	if len(resp.Predictions) != len(valid) {
		return nil, fmt.Errorf("remote predict: got %d predictions for %d records",
			len(resp.Predictions), len(valid))
	}

	name := n.ModelName
	if name == "" {
		name = "remote"
	}
	for i, rec := range valid {
		rec.Prediction = &core.Prediction{
			RecordID:  rec.ID,
			Predicted: resp.Predictions[i],
			Model:     name,
			Version:   resp.ModelVersion,
		}
		rec.PutLabel("model", utils.Label{Value: name, Source: "score"})
		rec.PutLabel("score_type", utils.Label{Value: "remote", Source: "score"})
	}
	return records, nil
}
