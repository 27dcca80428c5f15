// Package model 定义模型规格（Model Specification）：对一个预测函数的
// 不可变、带版本的描述，包括输入字段声明、输出字段与线性计算结构。
//
// 规格以 JSON（规范格式）或 YAML 序列化，加载一次后只读，
// 可在任意多个并发打分调用间无锁共享。
package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/scorekit/core"
)

// Kind 是模型的计算类型。目前只保证线性回归与二分类逻辑回归两种形式，
// 其余类型在加载期即被拒绝（UNSUPPORTED_MODEL_KIND）。
type Kind string

const (
	// KindLinear 线性回归：predicted = intercept + sum(coef_i * value_i)
	KindLinear Kind = "linear"
	// KindLogistic 逻辑回归：对同一线性和做 sigmoid 变换，输出概率 (0,1)
	KindLogistic Kind = "logistic"
)

// FieldType 是预测字段的声明类型。
type FieldType string

const (
	// FieldNumeric 数值字段，直接参与线性加权
	FieldNumeric FieldType = "numeric"
	// FieldBoolean 布尔字段，打分时强转为 {0,1} 后参与加权
	FieldBoolean FieldType = "boolean"
)

// Predictor 是一个预测字段的声明：名称、类型与系数。
type Predictor struct {
	Name        string    `json:"name" yaml:"name"`
	Type        FieldType `json:"type" yaml:"type"`
	Coefficient float64   `json:"coefficient" yaml:"coefficient"`
}

// Spec 是一份已通过校验的模型规格。加载完成后不可变：
// 同一个 Spec 实例服务一个 Stage 的全部并发打分，换模型需要新建 Stage。
type Spec struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	Kind    Kind   `json:"kind" yaml:"kind"`

	// Output 是预测值的输出字段名
	Output string `json:"output" yaml:"output"`

	// Label 是可选的真实值字段名：输入记录携带该字段时，
	// 打分结果会附带 actual 供下游做准确度校验
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	Intercept  float64     `json:"intercept" yaml:"intercept"`
	Predictors []Predictor `json:"predictors" yaml:"predictors"`
}

// rawSpec 用于解析：Intercept 用指针区分“缺失”与“0”，缺失是结构错误。
type rawSpec struct {
	Name       string      `json:"name" yaml:"name"`
	Version    string      `json:"version" yaml:"version"`
	Kind       string      `json:"kind" yaml:"kind"`
	Output     string      `json:"output" yaml:"output"`
	Label      string      `json:"label" yaml:"label"`
	Intercept  *float64    `json:"intercept" yaml:"intercept"`
	Predictors []Predictor `json:"predictors" yaml:"predictors"`
}

// Parse 从 JSON 文档解析并校验一份模型规格。
// 任何结构缺失/不一致都在此处失败，不会有半初始化的规格逃逸。
func Parse(data []byte) (*Spec, error) {
	var raw rawSpec
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, malformed(fmt.Sprintf("parse json: %v", err))
	}
	return raw.toSpec()
}

// ParseYAML 从 YAML 文档解析并校验一份模型规格。
func ParseYAML(data []byte) (*Spec, error) {
	var raw rawSpec
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, malformed(fmt.Sprintf("parse yaml: %v", err))
	}
	return raw.toSpec()
}

// Load 从文件加载模型规格，按扩展名分发：.yaml/.yml 走 YAML，其余走 JSON。
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

func (raw *rawSpec) toSpec() (*Spec, error) {
	if raw.Intercept == nil {
		return nil, malformed("specification missing intercept")
	}
	if raw.Output == "" {
		return nil, malformed("specification missing output field")
	}
	if len(raw.Predictors) == 0 {
		return nil, malformed("specification declares no predictors")
	}

	switch Kind(raw.Kind) {
	case KindLinear, KindLogistic:
	case "":
		return nil, malformed("specification missing kind")
	default:
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeUnsupportedModelKind,
			fmt.Sprintf("unsupported model kind %q (supported: linear, logistic)", raw.Kind))
	}

	seen := make(map[string]struct{}, len(raw.Predictors))
	for _, p := range raw.Predictors {
		if p.Name == "" {
			return nil, malformed("predictor with empty name")
		}
		if _, dup := seen[p.Name]; dup {
			return nil, malformed(fmt.Sprintf("duplicate predictor %q", p.Name))
		}
		seen[p.Name] = struct{}{}

		switch p.Type {
		case FieldNumeric, FieldBoolean:
		case "":
			return nil, malformed(fmt.Sprintf("predictor %q has no declared type", p.Name))
		default:
			return nil, malformed(fmt.Sprintf("predictor %q has unknown type %q", p.Name, p.Type))
		}
	}

	return &Spec{
		Name:       raw.Name,
		Version:    raw.Version,
		Kind:       Kind(raw.Kind),
		Output:     raw.Output,
		Label:      raw.Label,
		Intercept:  *raw.Intercept,
		Predictors: raw.Predictors,
	}, nil
}

func malformed(msg string) error {
	return core.NewDomainError(core.ModuleModel, core.ErrorCodeMalformedSpecification, msg)
}
