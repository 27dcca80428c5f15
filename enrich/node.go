// Package enrich 提供打分前的字段补全：记录缺少模型规格声明的预测字段时，
// 按实体 ID 从在线特征库（如 Feast）回填。
package enrich

import (
	"context"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/model"
	"github.com/rushteam/scorekit/pipeline"
	"github.com/rushteam/scorekit/pkg/conv"
	"github.com/rushteam/scorekit/pkg/utils"
)

// EnrichNode 是字段补全 Node。
//
// 对每条记录：找出 Spec 声明但记录缺失的预测字段，按记录的实体 ID
// 批量向 FeatureService 查询并回填。补全是尽力而为：
//   - 特征库也没有的字段保持缺失，打分阶段照常产生 MISSING_FIELD
//   - 特征服务整体失败只打 label，不阻塞打分（由打分阶段裁决每条记录）
//
// 记录已有的字段永远不被覆盖——输入记录的原始取值优先。
type EnrichNode struct {
	Features core.FeatureService

	// Spec 用于确定哪些字段需要补全；为 nil 时此 Node 为 no-op
	Spec *model.Spec

	// EntityField 实体 ID 在 Record.Fields 中的字段名；为空时使用 Record.ID
	EntityField string

	// FeatureNames 特征库侧的特征全名（如 "mother_stats:plurality"），
	// 与 Spec 预测字段同序对应；为空时直接用预测字段名查询
	FeatureNames map[string]string
}

func (n *EnrichNode) Name() string        { return "enrich.features" }
func (n *EnrichNode) Kind() pipeline.Kind { return pipeline.KindEnrich }

func (n *EnrichNode) Process(
	ctx context.Context,
	_ *core.ScoreContext,
	records []*core.Record,
) ([]*core.Record, error) {
	if n.Features == nil || n.Spec == nil || len(records) == 0 {
		return records, nil
	}

	// 收集有缺失字段的记录及其实体 ID
	needs := make(map[string][]string)          // entityID -> missing predictor names
	byEntity := make(map[string][]*core.Record) // entityID -> records
	for _, rec := range records {
		if rec == nil {
			continue
		}
		missing := n.missingPredictors(rec)
		if len(missing) == 0 {
			continue
		}
		id := n.entityID(rec)
		if id == "" {
			continue
		}
		needs[id] = append(needs[id], missing...)
		byEntity[id] = append(byEntity[id], rec)
	}
	if len(needs) == 0 {
		return records, nil
	}

	entityIDs := make([]string, 0, len(needs))
	nameSet := make(map[string]struct{})
	for id, names := range needs {
		entityIDs = append(entityIDs, id)
		for _, name := range names {
			nameSet[n.featureName(name)] = struct{}{}
		}
	}
	featureNames := make([]string, 0, len(nameSet))
	for name := range nameSet {
		featureNames = append(featureNames, name)
	}

	fetched, err := n.Features.BatchGetFeatures(ctx, entityIDs, featureNames)
	if err != nil {
		// 特征服务失败不阻塞打分：缺失字段由打分阶段逐条裁决
		for _, recs := range byEntity {
			for _, rec := range recs {
				rec.PutLabel("enrich_error", utils.Label{Value: n.Features.Name(), Source: "enrich"})
			}
		}
		return records, nil
	}

	for id, recs := range byEntity {
		values, ok := fetched[id]
		if !ok {
			continue
		}
		for _, rec := range recs {
			filled := false
			for _, name := range n.missingPredictors(rec) {
				if v, ok := values[n.featureName(name)]; ok {
					rec.Fields[name] = v
					filled = true
				}
			}
			if filled {
				rec.PutLabel("enriched", utils.Label{Value: n.Features.Name(), Source: "enrich"})
			}
		}
	}
	return records, nil
}

// missingPredictors 返回规格声明但记录缺失的预测字段名。
func (n *EnrichNode) missingPredictors(rec *core.Record) []string {
	var missing []string
	for _, p := range n.Spec.Predictors {
		if _, ok := rec.Fields[p.Name]; !ok {
			missing = append(missing, p.Name)
		}
	}
	return missing
}

// entityID 返回记录的实体 ID。
func (n *EnrichNode) entityID(rec *core.Record) string {
	if n.EntityField == "" {
		return rec.ID
	}
	if v, ok := rec.Fields[n.EntityField]; ok {
		if s, ok := conv.ToString(v); ok {
			return s
		}
	}
	return rec.ID
}

// featureName 把预测字段名映射为特征库侧的特征全名。
func (n *EnrichNode) featureName(predictor string) string {
	if n.FeatureNames != nil {
		if full, ok := n.FeatureNames[predictor]; ok {
			return full
		}
	}
	return predictor
}
