package service

import (
	"aitools.app/recommender/common/llm"
	"aitools.app/recommender/core/config"
	"aitools.app/recommender/internal/metrics"
)

type Services struct {
	datasets DatasetService
	queries  QueryService
}

type ServicesConfig struct {
	Datasets DatasetService
	LLM      llm.Client // nil disables /consulta with a configuration error
	LLMCfg   config.LLMConfig
	Metrics  *metrics.Metrics
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{
		datasets: cfg.Datasets,
		queries: NewQueryService(QueryServiceConfig{
			Datasets:  cfg.Datasets,
			LLM:       cfg.LLM,
			MaxTokens: cfg.LLMCfg.MaxTokens,
			Timeout:   cfg.LLMCfg.Timeout,
			Metrics:   cfg.Metrics,
		}),
	}
}

func (s *Services) Datasets() DatasetService {
	return s.datasets
}

func (s *Services) Queries() QueryService {
	return s.queries
}
