package pipeline

import (
	"context"

	"github.com/rushteam/scorekit/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindEnrich      Kind = "enrich"      // 补全阶段：从特征库回填缺失的预测字段
	KindFilter      Kind = "filter"      // 过滤阶段：剔除不需要打分的记录
	KindScore       Kind = "score"       // 打分阶段：对记录求预测值
	KindSink        Kind = "sink"        // 落盘阶段：把预测结果写入外部存储
	KindPostProcess Kind = "postprocess" // 后处理阶段：死信路由或最终结果修饰
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 records -> 输出 records”的形态，方便 Enrich 补全、Filter 截断、Sink 落盘等操作。
//
// 逐条失败约定：打分类 Node 把单条记录的失败写到 Record.Err 并继续处理其余记录；
// Process 返回 error 只用于整个 Node 级别的失败（如存储不可用）。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		sctx *core.ScoreContext,
		records []*core.Record,
	) ([]*core.Record, error)
}

// NodeBuilder 根据 config 构建 Node，供配置驱动使用。
type NodeBuilder func(config map[string]interface{}) (Node, error)
