// Package batch 是批量打分适配器：把有界的记录源并发喂给打分阶段，
// 结果通过 sink（如 KeyValueStore）落盘，逐条失败单独上报、不中止批次。
package batch

import (
	"context"
	"errors"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pipeline"
)

// Source 是有界记录源：批表扫描、文件、内存切片等。
// Next 返回 io.EOF 表示读尽。实现无需并发安全，Runner 串行拉取。
type Source interface {
	Name() string
	Next(ctx context.Context) (*core.Record, error)
}

// SliceSource 是内存切片实现的 Source，用于测试/小批量。
type SliceSource struct {
	Records []*core.Record
	pos     int
}

func (s *SliceSource) Name() string { return "slice" }

func (s *SliceSource) Next(_ context.Context) (*core.Record, error) {
	if s.pos >= len(s.Records) {
		return nil, io.EOF
	}
	rec := s.Records[s.pos]
	s.pos++
	return rec, nil
}

// Runner 并发地把 Source 的记录分块送入 Pipeline。
// 同一条 Pipeline（及其内部共享的只读模型规格）服务所有 worker。
type Runner struct {
	Pipeline *pipeline.Pipeline

	// Workers 并发 worker 数（<=0 时为 1）
	Workers int

	// ChunkSize 每个 worker 单次处理的记录数（<=0 时为 100）
	ChunkSize int
}

// Report 是一次批量打分的汇总。逐条失败进入 Failed，不影响 Scored 的记录。
type Report struct {
	Total  int
	Scored int
	Failed []*core.Record
}

// Run 读尽 Source 并打分。返回 error 仅在 Source 读取失败或某个
// Node 级失败（如 sink 不可用）时发生；逐条打分失败体现在 Report.Failed。
func (r *Runner) Run(ctx context.Context, sctx *core.ScoreContext, src Source) (*Report, error) {
	if r.Pipeline == nil {
		return &Report{}, nil
	}
	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	chunkSize := r.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 100
	}

	chunks := make(chan []*core.Record)
	var (
		mu     sync.Mutex
		report Report
	)

	eg, egCtx := errgroup.WithContext(ctx)

	// 生产者：串行拉取 Source，按块下发
	eg.Go(func() error {
		defer close(chunks)
		chunk := make([]*core.Record, 0, chunkSize)
		for {
			rec, err := src.Next(egCtx)
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return err
			}
			if rec == nil {
				continue
			}
			chunk = append(chunk, rec)
			if len(chunk) >= chunkSize {
				select {
				case chunks <- chunk:
				case <-egCtx.Done():
					return egCtx.Err()
				}
				chunk = make([]*core.Record, 0, chunkSize)
			}
		}
		if len(chunk) > 0 {
			select {
			case chunks <- chunk:
			case <-egCtx.Done():
				return egCtx.Err()
			}
		}
		return nil
	})

	// 消费者：每个 worker 跑同一条 Pipeline
	for i := 0; i < workers; i++ {
		eg.Go(func() error {
			for chunk := range chunks {
				out, err := r.Pipeline.Run(egCtx, sctx, chunk)
				if err != nil {
					return err
				}
				ok, failed := pipeline.Partition(out)

				mu.Lock()
				report.Total += len(chunk)
				report.Scored += len(ok)
				report.Failed = append(report.Failed, failed...)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &report, nil
}
