package builders

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rushteam/scorekit/config"
	"github.com/rushteam/scorekit/filter"
	"github.com/rushteam/scorekit/model"
	"github.com/rushteam/scorekit/pipeline"
	"github.com/rushteam/scorekit/pkg/conv"
	"github.com/rushteam/scorekit/score"
	"github.com/rushteam/scorekit/service"
	"github.com/rushteam/scorekit/sink"
	"github.com/rushteam/scorekit/store"
)

func init() {
	config.Register("score.stage", BuildStageNode)
	config.Register("score.remote", BuildRemoteNode)
	config.Register("filter.expr", BuildExprFilterNode)
	config.Register("sink.store", BuildStoreSinkNode)
}

// enrich.features 不做配置注册：EnrichNode 依赖注入的 core.FeatureService
// （有状态连接），无法纯配置构建，请在代码中直接构造 enrich.EnrichNode。

// BuildStageNode 从配置构建本地打分 Node。
// 规格来源二选一：path（规格文件）或 spec（内联规格文档）。
func BuildStageNode(cfg map[string]interface{}) (pipeline.Node, error) {
	spec, err := specFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	stage, err := score.NewStage(spec)
	if err != nil {
		return nil, err
	}
	return &score.StageNode{Stage: stage}, nil
}

func specFromConfig(cfg map[string]interface{}) (*model.Spec, error) {
	if path := conv.ConfigGet(cfg, "path", ""); path != "" {
		return model.Load(path)
	}
	inline, ok := cfg["spec"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("spec source not found: need path or inline spec")
	}
	// 内联规格走规范 JSON 解析，复用同一套结构校验
	data, err := json.Marshal(inline)
	if err != nil {
		return nil, fmt.Errorf("marshal inline spec: %w", err)
	}
	return model.Parse(data)
}

// BuildRemoteNode 从配置构建远程打分 Node（TF Serving REST）。
func BuildRemoteNode(cfg map[string]interface{}) (pipeline.Node, error) {
	endpoint := conv.ConfigGet(cfg, "endpoint", "")
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint not found")
	}
	modelName := conv.ConfigGet(cfg, "model", "")
	if modelName == "" {
		return nil, fmt.Errorf("model not found")
	}

	opts := []service.TFServingOption{}
	if version := conv.ConfigGet(cfg, "version", ""); version != "" {
		opts = append(opts, service.WithTFServingVersion(version))
	}
	if sec := conv.ConfigGetInt64(cfg, "timeout", 0); sec > 0 {
		opts = append(opts, service.WithTFServingTimeout(time.Duration(sec)*time.Second))
	}

	client := service.NewTFServingClient(endpoint, modelName, opts...)
	return &score.RemoteNode{Service: client, ModelName: modelName}, nil
}

// BuildExprFilterNode 从配置构建 CEL 过滤 Node。
func BuildExprFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("expr not found")
	}
	f, err := filter.NewExprFilter(expr)
	if err != nil {
		return nil, fmt.Errorf("compile filter expr: %w", err)
	}
	return &filter.FilterNode{Filters: []filter.Filter{f}}, nil
}

// BuildStoreSinkNode 从配置构建存储落盘 Node。
// backend: memory / redis（redis 需要 addr，可选 db）。
func BuildStoreSinkNode(cfg map[string]interface{}) (pipeline.Node, error) {
	node := &sink.StoreNode{
		KeyPrefix: conv.ConfigGet(cfg, "key_prefix", "prediction:"),
		TTL:       int(conv.ConfigGetInt64(cfg, "ttl", 0)),
		RankKey:   conv.ConfigGet(cfg, "rank_key", ""),
	}

	switch backend := conv.ConfigGet(cfg, "backend", "memory"); backend {
	case "memory":
		node.Store = store.NewMemoryStore()
	case "redis":
		addr := conv.ConfigGet(cfg, "addr", "")
		if addr == "" {
			return nil, fmt.Errorf("redis backend requires addr")
		}
		db := int(conv.ConfigGetInt64(cfg, "db", 0))
		rs, err := store.NewRedisStore(addr, db)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		node.Store = rs
	default:
		return nil, fmt.Errorf("unknown sink backend: %s", backend)
	}
	return node, nil
}
