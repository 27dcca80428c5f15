package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TFServingClient 是 TensorFlow Serving 的客户端实现（REST API）。
//
// TensorFlow Serving 支持两种协议：
//   - gRPC：端口 8500
//   - REST API：端口 8501（HTTP/JSON，本实现使用）
//
// 使用场景：
//   - 线性/逻辑回归以外的模型（DNN 等）由 TF Serving 托管，
//     Scorekit 侧只做记录到特征的映射与结果回填
type TFServingClient struct {
	// Endpoint 服务端点，REST: "http://localhost:8501"
	Endpoint string

	// ModelName 模型名称
	ModelName string

	// ModelVersion 模型版本（可选，为空则使用最新版本）
	ModelVersion string

	// SignatureName 签名名称（可选，默认为 "serving_default"）
	SignatureName string

	// Timeout 超时时间
	Timeout time.Duration

	// Auth 认证信息
	Auth *AuthConfig

	httpClient *http.Client
}

// NewTFServingClient 创建一个新的 TF Serving 客户端。
func NewTFServingClient(endpoint, modelName string, opts ...TFServingOption) *TFServingClient {
	client := &TFServingClient{
		Endpoint:      endpoint,
		ModelName:     modelName,
		SignatureName: "serving_default",
		Timeout:       30 * time.Second,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.httpClient = &http.Client{
		Timeout: client.Timeout,
	}

	return client
}

// TFServingOption TF Serving 客户端配置选项
type TFServingOption func(*TFServingClient)

// WithTFServingVersion 设置模型版本
func WithTFServingVersion(version string) TFServingOption {
	return func(c *TFServingClient) {
		c.ModelVersion = version
	}
}

// WithTFServingSignature 设置签名名称
func WithTFServingSignature(signatureName string) TFServingOption {
	return func(c *TFServingClient) {
		c.SignatureName = signatureName
	}
}

// WithTFServingTimeout 设置超时时间
func WithTFServingTimeout(timeout time.Duration) TFServingOption {
	return func(c *TFServingClient) {
		c.Timeout = timeout
	}
}

// WithTFServingAuth 设置认证信息
func WithTFServingAuth(auth *AuthConfig) TFServingOption {
	return func(c *TFServingClient) {
		c.Auth = auth
	}
}

// Predict 实现 ScoringService 接口
func (c *TFServingClient) Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error) {
	if len(req.Instances) == 0 && len(req.Features) == 0 {
		return nil, fmt.Errorf("instances or features are required")
	}

	// 1. 构建 URL
	url := fmt.Sprintf("%s/v1/models/%s:predict", c.Endpoint, c.ModelName)
	if c.ModelVersion != "" {
		url = fmt.Sprintf("%s/v1/models/%s/versions/%s:predict", c.Endpoint, c.ModelName, c.ModelVersion)
	}

	// 2. 构建请求体
	body := make(map[string]interface{})
	if len(req.Instances) > 0 {
		body["instances"] = req.Instances
	} else if len(req.Features) > 0 {
		// TF Serving 也支持 features 格式
		body["inputs"] = req.Features
	}
	if c.SignatureName != "" {
		body["signature_name"] = c.SignatureName
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	if c.Auth != nil {
		c.addAuth(httpReq)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tf serving error: status=%d, body=%s", resp.StatusCode, string(bodyBytes))
	}

	var result struct {
		Predictions []interface{} `json:"predictions"`
		Outputs     interface{}   `json:"outputs,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// 转换预测结果
	predictions := make([]float64, 0, len(result.Predictions))
	for _, pred := range result.Predictions {
		switch v := pred.(type) {
		case float64:
			predictions = append(predictions, v)
		case []interface{}:
			// 如果返回的是数组，取第一个元素
			if len(v) > 0 {
				if fv, ok := v[0].(float64); ok {
					predictions = append(predictions, fv)
				}
			}
		default:
			return nil, fmt.Errorf("unexpected prediction type: %T", pred)
		}
	}

	return &PredictResponse{
		Predictions:  predictions,
		Outputs:      result.Outputs,
		ModelVersion: c.ModelVersion,
	}, nil
}

// addAuth 添加认证信息到 HTTP 请求
func (c *TFServingClient) addAuth(req *http.Request) {
	if c.Auth == nil {
		return
	}

	switch c.Auth.Type {
	case "basic":
		req.SetBasicAuth(c.Auth.Username, c.Auth.Password)
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+c.Auth.Token)
	case "api_key":
		req.Header.Set("X-API-Key", c.Auth.APIKey)
	}
}

// Health 健康检查
func (c *TFServingClient) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/v1/models/%s", c.Endpoint, c.ModelName)
	if c.ModelVersion != "" {
		url = fmt.Sprintf("%s/v1/models/%s/versions/%s", c.Endpoint, c.ModelName, c.ModelVersion)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.Auth != nil {
		c.addAuth(httpReq)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status=%d", resp.StatusCode)
	}
	return nil
}

// Close 关闭连接
func (c *TFServingClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
