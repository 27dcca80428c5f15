// Package filter 提供打分前/后的记录过滤：剔除不需要进入后续 Node 的记录。
// 过滤只是路由决策，不产生逐条错误——被剔除的记录直接从链路移除。
package filter

import (
	"context"

	"github.com/rushteam/scorekit/core"
)

// Filter 判断一条记录是否应被剔除。
type Filter interface {
	Name() string

	// ShouldDrop 返回 true 表示该记录不进入后续 Node
	ShouldDrop(ctx context.Context, sctx *core.ScoreContext, rec *core.Record) (bool, error)
}
