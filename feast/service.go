package feast

import (
	"context"
	"fmt"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pkg/conv"
)

// FeatureService 把 feast.Client 适配为领域接口 core.FeatureService，
// 供 enrich.EnrichNode 在打分前按实体 ID 回填缺失的预测字段。
type FeatureService struct {
	client Client

	// EntityKey 实体主键名，例如 "mother_id"
	EntityKey string

	// Project 项目名称（可选，覆盖 client 默认值）
	Project string
}

// NewFeatureService 构造 Feast 特征服务适配器。
func NewFeatureService(client Client, entityKey string) *FeatureService {
	return &FeatureService{
		client:    client,
		EntityKey: entityKey,
	}
}

func (s *FeatureService) Name() string { return "feast" }

// GetFeatures 获取单个实体的特征
func (s *FeatureService) GetFeatures(ctx context.Context, entityID string, featureNames []string) (map[string]float64, error) {
	all, err := s.BatchGetFeatures(ctx, []string{entityID}, featureNames)
	if err != nil {
		return nil, err
	}
	return all[entityID], nil
}

// BatchGetFeatures 批量获取实体特征，只保留可转为 float64 的特征值。
func (s *FeatureService) BatchGetFeatures(ctx context.Context, entityIDs []string, featureNames []string) (map[string]map[string]float64, error) {
	if len(entityIDs) == 0 || len(featureNames) == 0 {
		return map[string]map[string]float64{}, nil
	}

	entityRows := make([]map[string]interface{}, len(entityIDs))
	for i, id := range entityIDs {
		entityRows[i] = map[string]interface{}{s.EntityKey: id}
	}

	resp, err := s.client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   featureNames,
		EntityRows: entityRows,
		Project:    s.Project,
	})
	if err != nil {
		return nil, fmt.Errorf("feast batch get features: %w", err)
	}
	if len(resp.FeatureVectors) != len(entityIDs) {
		return nil, fmt.Errorf("feast returned %d vectors for %d entities",
			len(resp.FeatureVectors), len(entityIDs))
	}

	result := make(map[string]map[string]float64, len(entityIDs))
	for i, id := range entityIDs {
		result[id] = conv.MapToFloat64(resp.FeatureVectors[i].Values)
	}
	return result, nil
}

// Close 关闭底层客户端
func (s *FeatureService) Close(ctx context.Context) error {
	return s.client.Close()
}

var _ core.FeatureService = (*FeatureService)(nil)
