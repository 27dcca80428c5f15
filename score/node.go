package score

import (
	"context"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pipeline"
	"github.com/rushteam/scorekit/pkg/utils"
)

// StageNode 把 Stage 接入 Pipeline：对每条记录调用 Score。
// - 成功：写入 Record.Prediction，并打上 model label
// - 逐条失败：写入 Record.Err，不中止其余记录（由下游决定丢弃/死信/重试）
type StageNode struct {
	Stage *Stage
}

func (n *StageNode) Name() string        { return "score.stage" }
func (n *StageNode) Kind() pipeline.Kind { return pipeline.KindScore }

func (n *StageNode) Process(
	_ context.Context,
	_ *core.ScoreContext,
	records []*core.Record,
) ([]*core.Record, error) {
	if n.Stage == nil || len(records) == 0 {
		return records, nil
	}

	spec := n.Stage.Spec()
	for _, rec := range records {
		if rec == nil || rec.Err != nil {
			continue
		}
		pred, err := n.Stage.Score(rec)
		if err != nil {
			rec.Err = err
			if domainErr := core.GetDomainError(err); domainErr != nil {
				rec.PutLabel("score_error", utils.Label{Value: domainErr.Code, Source: "score"})
			}
			continue
		}
		rec.Prediction = pred
		rec.PutLabel("model", utils.Label{Value: spec.Name + "/" + spec.Version, Source: "score"})
	}
	return records, nil
}
