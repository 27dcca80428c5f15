package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/scorekit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("record", cel.DynType),
		cel.Variable("field", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("sctx", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	if celEnv == nil && err == nil {
		err = fmt.Errorf("cel env not initialized")
	}
	return celEnv, err
}

// Program 是一条编译好的路由/过滤表达式，使用 CEL (Common Expression Language) 实现。
// 编译一次后可在任意多条记录上并发求值。
//
// 表达式语法（CEL 标准语法）：
//   - 字段：field.country == "US" / field.plurality >= 2.0
//   - 预测：record.predicted > 0.5（仅打分后可用）
//   - 标签：label.model != null / label.model.contains("baby")
//   - 上下文：sctx.source == "stream"
//
// 示例：
//   - `field.year >= 2000.0` → 只打分 2000 年以后的记录
//   - `record.predicted > 0.9 && sctx.source == "stream"` → 高分流式记录
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译一条表达式。空表达式视为恒真。
func Compile(expr string) (*Program, error) {
	if expr == "" {
		return &Program{expr: expr}, nil
	}

	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %v", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// Expr 返回原始表达式文本。
func (p *Program) Expr() string { return p.expr }

// Eval 对一条记录求值，返回布尔结果。
// 注意：CEL 访问不存在的 key 会报错，用 `field.key != null` 检查存在性。
func (p *Program) Eval(rec *core.Record, sctx *core.ScoreContext) (bool, error) {
	if p.prg == nil {
		return true, nil
	}

	out, _, err := p.prg.Eval(buildInput(rec, sctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(rec *core.Record, sctx *core.ScoreContext) map[string]interface{} {
	// label.model 直接返回 value，方便表达式书写
	labels := make(map[string]interface{})
	for k, v := range rec.Labels {
		labels[k] = v.Value
	}

	record := map[string]interface{}{
		"id":     rec.ID,
		"fields": rec.Fields,
		"meta":   rec.Meta,
		"labels": labels,
	}
	if rec.Prediction != nil {
		record["predicted"] = rec.Prediction.Predicted
		if rec.Prediction.Actual != nil {
			record["actual"] = *rec.Prediction.Actual
		}
	}

	sctxMap := map[string]interface{}{}
	if sctx != nil {
		sctxMap["request_id"] = sctx.RequestID
		sctxMap["source"] = sctx.Source
		sctxMap["params"] = sctx.Params
	}

	return map[string]interface{}{
		"record": record,
		"field":  rec.Fields,
		"label":  labels,
		"sctx":   sctxMap,
	}
}
