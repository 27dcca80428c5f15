package core

import "github.com/rushteam/scorekit/pkg/utils"

// ScoreContext 承载一次打分请求/一个批次的上下文信息，贯穿整个 Pipeline 透传。
// 它描述记录从哪里来（batch / http / stream）以及请求级参数，
// 与单条 Record 的字段内容无关。
type ScoreContext struct {
	// RequestID 请求或批次的追踪 ID
	RequestID string

	// Source 记录来源："batch" / "http" / "stream"，由适配器填写
	Source string

	// Labels 是请求级标签，可驱动整个 Pipeline 行为
	// 例如：回放流量、影子打分、灰度分组等
	Labels map[string]utils.Label

	// Params 请求级上下文参数（如 partition、topic、table 等），
	// 仅供 Node 观测与路由使用，不参与模型计算
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (sctx *ScoreContext) PutLabel(key string, lbl utils.Label) {
	if sctx.Labels == nil {
		sctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := sctx.Labels[key]; ok {
		sctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	sctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (sctx *ScoreContext) GetLabel(key string) (utils.Label, bool) {
	if sctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := sctx.Labels[key]
	return lbl, ok
}
