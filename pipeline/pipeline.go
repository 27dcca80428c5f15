package pipeline

import (
	"context"

	"github.com/rushteam/scorekit/core"
)

// Pipeline 是 Scorekit 的核心抽象：把打分链路拆成可组合的 Node 链
// （Enrich → Filter → Score → Sink）。同一条链可被批/HTTP/流三种适配器复用。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	sctx *core.ScoreContext,
	records []*core.Record,
) ([]*core.Record, error) {
	cur := records
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, sctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Partition 把记录按逐条打分结果切分：ok 为成功打分的记录，failed 为
// Record.Err 非空的记录。调用方据此决定丢弃、死信还是重试。
func Partition(records []*core.Record) (ok, failed []*core.Record) {
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if rec.Err != nil {
			failed = append(failed, rec)
			continue
		}
		ok = append(ok, rec)
	}
	return ok, failed
}
