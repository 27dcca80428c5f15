package filter

import (
	"context"
	"fmt"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pkg/dsl"
)

// ExprFilter 是基于 CEL 表达式的过滤器：表达式求值为 true 时剔除记录。
// 表达式在构造时编译一次，之后可跨记录并发求值。
type ExprFilter struct {
	prg *dsl.Program
}

// NewExprFilter 编译表达式并构造过滤器。表达式非法时在此处失败（配置期，而非逐条）。
//
// 示例：
//
//	f, err := filter.NewExprFilter(`field.year < 1990.0`)
func NewExprFilter(expr string) (*ExprFilter, error) {
	if expr == "" {
		return nil, fmt.Errorf("filter expression is empty")
	}
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{prg: prg}, nil
}

func (f *ExprFilter) Name() string { return "filter.expr" }

func (f *ExprFilter) ShouldDrop(_ context.Context, sctx *core.ScoreContext, rec *core.Record) (bool, error) {
	return f.prg.Eval(rec, sctx)
}
