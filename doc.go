// Package scorekit 是一个模型打分工具包（Scoring Kit）。
//
// 设计要点：
// - Stage-first: 打分逻辑只有一份（score.Stage），批/HTTP/流三种适配器复用同一实例
// - Pipeline 可组合: Enrich → Filter → Score → Sink 通过 Node 串联，配置驱动
// - 逐条失败隔离: 单条记录的 MISSING_FIELD / NON_NUMERIC_VALUE 不影响批次中的其余记录
package scorekit

import "github.com/rushteam/scorekit/pipeline"

// 轻量 facade：便于用户直接 import "scorekit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindEnrich      = pipeline.KindEnrich
	KindFilter      = pipeline.KindFilter
	KindScore       = pipeline.KindScore
	KindSink        = pipeline.KindSink
	KindPostProcess = pipeline.KindPostProcess
)
