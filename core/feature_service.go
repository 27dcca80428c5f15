package core

import "context"

// FeatureService 是特征服务的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（feast 等）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//   - 避免循环依赖：领域层不依赖基础设施层
//
// 使用场景：
//   - 打分前补全：记录缺少规格声明的预测字段时，按实体 ID 从
//     在线特征库回填（enrich.EnrichNode）
//
// 注意：补全只是尽力而为，特征库也没有的字段仍会在打分阶段
// 产生 MISSING_FIELD 逐条错误。
type FeatureService interface {
	// Name 返回特征服务名称（用于日志/监控）
	Name() string

	// GetFeatures 获取单个实体的特征
	GetFeatures(ctx context.Context, entityID string, featureNames []string) (map[string]float64, error)

	// BatchGetFeatures 批量获取实体特征（推荐使用，减少网络往返）
	BatchGetFeatures(ctx context.Context, entityIDs []string, featureNames []string) (map[string]map[string]float64, error)

	// Close 关闭特征服务，释放资源
	Close(ctx context.Context) error
}
