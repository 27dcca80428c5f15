// Package score 实现模型打分阶段（Model Scoring Stage）：
// 从 (模型规格, 输入记录) 到预测结果的确定性无状态函数。
//
// 一个 Stage 持有一份加载后只读的规格，Evaluate/Score 纯函数、无副作用，
// 可被任意数量的并发调用方（批 worker / HTTP handler / 流消费者）无锁共享。
package score

import (
	"fmt"
	"math"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/model"
	"github.com/rushteam/scorekit/pkg/conv"
)

// Stage 是打分阶段实例：独占一份不可变的模型规格。
// 换新规格需要新建 Stage，不支持运行中换模型。
type Stage struct {
	spec *model.Spec
}

// NewStage 用一份已加载的规格构造打分阶段。
// spec 为 nil 时视为结构错误；构造成功后 spec 不再被修改。
func NewStage(spec *model.Spec) (*Stage, error) {
	if spec == nil {
		return nil, core.NewDomainError(core.ModuleScore, core.ErrorCodeMalformedSpecification,
			"stage requires a non-nil specification")
	}
	return &Stage{spec: spec}, nil
}

// NewStageFromFile 从规格文件直接构造打分阶段。加载失败即中止，不会得到半初始化的 Stage。
func NewStageFromFile(path string) (*Stage, error) {
	spec, err := model.Load(path)
	if err != nil {
		return nil, err
	}
	return NewStage(spec)
}

// Spec 返回 Stage 持有的规格（调用方必须视为只读）。
func (s *Stage) Spec() *model.Spec { return s.spec }

// Evaluate 对单条记录求预测值。
//
// 对规格声明的每个预测字段：从记录中取值并强转为 float64（布尔转 {0,1}）；
// 字段缺失返回 MISSING_FIELD，存在但不可转数值返回 NON_NUMERIC_VALUE，
// 错误均带字段名，且只影响本条记录。规格未声明的多余字段被忽略。
//
// linear 返回 intercept + sum(coef_i * value_i)；logistic 对同一线性和做
// sigmoid，返回值对任意有限输入严格落在 (0,1)。不截断、不取整。
func (s *Stage) Evaluate(rec *core.Record) (float64, error) {
	if rec == nil {
		return 0, core.NewDomainError(core.ModuleScore, core.ErrorCodeInvalidInput, "nil record")
	}

	sum := s.spec.Intercept
	for _, p := range s.spec.Predictors {
		v, ok := rec.Fields[p.Name]
		if !ok {
			return 0, core.NewFieldError(core.ModuleScore, core.ErrorCodeMissingField, p.Name,
				fmt.Sprintf("record missing predictor field %q", p.Name))
		}
		f, ok := conv.ToFloat64(v)
		if !ok {
			return 0, core.NewFieldError(core.ModuleScore, core.ErrorCodeNonNumericValue, p.Name,
				fmt.Sprintf("field %q is not numeric-coercible (%T)", p.Name, v))
		}
		sum += p.Coefficient * f
	}

	if s.spec.Kind == model.KindLogistic {
		return sigmoid(sum), nil
	}
	return sum, nil
}

// sigmoid 数值稳定版：按符号分支避免 exp 上溢；
// 下溢到 0/1 时夹到最近的可表示开区间边界，保证结果严格落在 (0,1)。
func sigmoid(x float64) float64 {
	var v float64
	if x >= 0 {
		v = 1 / (1 + math.Exp(-x))
	} else {
		e := math.Exp(x)
		v = e / (1 + e)
	}
	if v <= 0 {
		return math.SmallestNonzeroFloat64
	}
	if v >= 1 {
		return math.Nextafter(1, 0)
	}
	return v
}

// Score 包装 Evaluate，产出完整的预测结果。
// 若记录携带规格声明的 label 字段且可转数值，则附带 actual 供下游校验；
// label 缺失时结果只含 predicted。相同规格 + 相同记录两次 Score 结果逐位一致。
func (s *Stage) Score(rec *core.Record) (*core.Prediction, error) {
	predicted, err := s.Evaluate(rec)
	if err != nil {
		return nil, err
	}

	pred := &core.Prediction{
		RecordID:  rec.ID,
		Predicted: predicted,
		Model:     s.spec.Name,
		Version:   s.spec.Version,
	}
	if s.spec.Label != "" {
		if v, ok := rec.Fields[s.spec.Label]; ok {
			if actual, ok := conv.ToFloat64(v); ok {
				pred.Actual = &actual
			}
		}
	}
	return pred, nil
}
