package service

import (
	"context"
)

// ScoringService 是统一的远程打分服务接口，用于对接 TF Serving、TorchServe、自定义模型服务等。
// 本地无法求值的模型（非 linear/logistic 规格的模型）通过此接口交给进程外的服务。
//
// 设计目标：
//   - 统一不同模型服务的接口
//   - 支持批量预测
//   - 支持超时控制（通过 context）
//
// 使用示例：
//
//	svc := service.NewTFServingClient("http://localhost:8501", "fraud_model")
//	resp, err := svc.Predict(ctx, &service.PredictRequest{
//	    Features: []map[string]float64{features},
//	})
type ScoringService interface {
	// Predict 批量预测
	Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error)

	// Health 健康检查
	Health(ctx context.Context) error

	// Close 关闭连接
	Close() error
}

// PredictRequest 预测请求
type PredictRequest struct {
	// Instances 特征实例列表（每个实例是一个特征向量）
	// 格式：[[f1, f2, f3, ...], [f1, f2, f3, ...], ...]
	Instances [][]float64

	// Features 特征字典列表（可选，与 Instances 二选一）
	// 格式：[{"feature1": 0.1, "feature2": 0.2}, ...]
	Features []map[string]float64

	// ModelName 模型名称（可选，如果服务支持多模型）
	ModelName string

	// ModelVersion 模型版本（可选）
	ModelVersion string

	// Params 额外参数（可选）
	Params map[string]interface{}
}

// PredictResponse 预测响应
type PredictResponse struct {
	// Predictions 预测结果列表（与请求实例一一对应）
	Predictions []float64

	// Outputs 原始输出（可选，用于调试）
	Outputs interface{}

	// ModelVersion 实际使用的模型版本
	ModelVersion string
}

// AuthConfig 认证配置
type AuthConfig struct {
	Type     string // basic / bearer / api_key
	Username string
	Password string
	Token    string
	APIKey   string
}
