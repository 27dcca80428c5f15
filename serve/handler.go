// Package serve 是在线打分适配器：把 HTTP 请求转换为输入记录，
// 调用共享的打分阶段，并把预测结果写回响应。
//
// 适配器只做边界转换，不含任何打分逻辑；同一个 Stage 实例
// 无锁服务全部并发请求。
package serve

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/score"
)

// Handler 是 net/http 的打分处理器。
//   - GET：query 参数即字段，值依次尝试 float64 / bool，否则保留为 string
//   - POST：JSON body，{"id": "...", "fields": {...}} 或扁平字段对象
//
// 逐条错误（MISSING_FIELD / NON_NUMERIC_VALUE）返回 422 和结构化错误体，
// 请求解析失败返回 400；进程内不会因单条请求失败而受影响。
type Handler struct {
	Stage *score.Stage
}

func NewHandler(stage *score.Stage) *Handler {
	return &Handler{Stage: stage}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec, err := h.parseRecord(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Code: core.ErrorCodeInvalidInput})
		return
	}

	pred, err := h.Stage.Score(rec)
	if err != nil {
		status := http.StatusInternalServerError
		body := errorBody{Error: err.Error()}
		if domainErr := core.GetDomainError(err); domainErr != nil {
			body.Code = domainErr.Code
			body.Field = domainErr.Field
			if core.IsRecoverable(err) {
				status = http.StatusUnprocessableEntity
			}
		}
		writeJSON(w, status, body)
		return
	}

	writeJSON(w, http.StatusOK, pred)
}

// parseRecord 把 HTTP 请求转换为输入记录。
func (h *Handler) parseRecord(r *http.Request) (*core.Record, error) {
	switch r.Method {
	case http.MethodGet:
		rec := core.NewRecord(r.URL.Query().Get("id"))
		for key, vals := range r.URL.Query() {
			if key == "id" || len(vals) == 0 {
				continue
			}
			rec.Fields[key] = parseValue(vals[0])
		}
		return rec, nil

	case http.MethodPost:
		var body struct {
			ID     string         `json:"id"`
			Fields map[string]any `json:"fields"`
		}
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&body); err != nil {
			return nil, fmt.Errorf("parse request body: %w", err)
		}
		if body.Fields == nil {
			return nil, fmt.Errorf("request body missing fields")
		}
		rec := core.NewRecord(body.ID)
		rec.Fields = body.Fields
		return rec, nil

	default:
		return nil, fmt.Errorf("method %s not allowed", r.Method)
	}
}

// parseValue 把 query 字符串转为字段值：数值优先，其次布尔，否则原样保留。
// 保留为 string 的值在打分阶段会产生 NON_NUMERIC_VALUE（若被规格声明）。
func parseValue(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
