package core

import "github.com/rushteam/scorekit/pkg/utils"

// Record 是打分链路中的统一承载结构：一条待打分的输入记录。
// Fields 是字段名到取值（数值或布尔）的映射，由外部适配器（批扫描/HTTP/消息）
// 从各自的来源转换而来；规格未声明的多余字段会被打分阶段忽略。
//
// Prediction 与 Err 由打分 Node 填写：二者互斥，Err 非空表示该条记录打分失败，
// 失败只影响本条记录，下游可按 Err 做丢弃/死信/重试。
type Record struct {
	ID     string
	Fields map[string]any
	Meta   map[string]any
	Labels map[string]utils.Label

	Prediction *Prediction
	Err        error
}

func NewRecord(id string) *Record {
	return &Record{
		ID:     id,
		Fields: make(map[string]any),
		Meta:   make(map[string]any),
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (r *Record) PutLabel(key string, lbl utils.Label) {
	if r.Labels == nil {
		r.Labels = make(map[string]utils.Label)
	}
	if old, ok := r.Labels[key]; ok {
		r.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	r.Labels[key] = lbl
}

// Prediction 是对一条 Record 打分的结果，产出后不可变，所有权交给下游 sink。
// Actual 仅在输入记录携带规格声明的 label 字段时填充，用于离线校验模型准确度。
type Prediction struct {
	RecordID  string   `json:"record_id,omitempty"`
	Predicted float64  `json:"predicted"`
	Actual    *float64 `json:"actual,omitempty"`

	// Model / Version 标识产出本条预测的模型规格，便于回溯。
	Model   string `json:"model,omitempty"`
	Version string `json:"version,omitempty"`
}
