package filter

import (
	"context"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pipeline"
	"github.com/rushteam/scorekit/pkg/utils"
)

// FilterNode 是过滤 Node，可以组合多个过滤器。
// 任何一个过滤器返回 true，该记录就会被剔除。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string        { return "filter.node" }
func (n *FilterNode) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *FilterNode) Process(
	ctx context.Context,
	sctx *core.ScoreContext,
	records []*core.Record,
) ([]*core.Record, error) {
	if len(n.Filters) == 0 || len(records) == 0 {
		return records, nil
	}

	out := make([]*core.Record, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}

		drop := false
		reason := ""
		for _, f := range n.Filters {
			ok, err := f.ShouldDrop(ctx, sctx, rec)
			if err != nil {
				// 过滤器错误时记录但不中断流程
				continue
			}
			if ok {
				drop = true
				reason = f.Name()
				break
			}
		}

		if drop {
			rec.PutLabel("filtered", utils.Label{Value: "true", Source: reason})
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
