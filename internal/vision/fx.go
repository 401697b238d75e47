package vision

import (
	"time"

	"github.com/moimlab/moim/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("vision",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) Scorer {
	switch cfg.Vision.Provider {
	case "histogram":
		return NewHistogram()
	default:
		return NewGenAI(GenAIConfig{
			BaseURL: cfg.Vision.APIBaseURL,
			APIKey:  cfg.Vision.APIKey,
			Model:   cfg.Vision.Model,
			Timeout: time.Duration(cfg.Vision.TimeoutSeconds) * time.Second,
		}, log)
	}
}
