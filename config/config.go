package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tradekit/lob/pkg/orderbook"
)

type EngineConfig struct {
	Capacity        int    `yaml:"capacity"`
	PriceConvention string `yaml:"price_convention"` // maker, taker, mid
	StrictChecks    bool   `yaml:"strict_checks"`
}

type ReplayConfig struct {
	DepthLevels int    `yaml:"depth_levels"`
	LogLevel    string `yaml:"log_level"`
}

type AppConfig struct {
	ServiceName string        `yaml:"service_name"`
	Engine      *EngineConfig `yaml:"engine"`
	Replay      *ReplayConfig `yaml:"replay"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	sugar := zap.S().With("func", "config.Load", "filePath", filePath)
	sugar.Debug("Load config...")

	cfg := Default()
	if len(filePath) == 0 {
		return cfg, nil
	}

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	if err := yaml.Unmarshal(configBytes, cfg); err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}
	cfg.fillDefaults()

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}

func Default() *AppConfig {
	cfg := &AppConfig{ServiceName: "lob"}
	cfg.fillDefaults()
	return cfg
}

func (c *AppConfig) fillDefaults() {
	if c.Engine == nil {
		c.Engine = &EngineConfig{}
	}
	if c.Engine.Capacity == 0 {
		c.Engine.Capacity = orderbook.DefaultCapacity
	}
	if c.Engine.PriceConvention == "" {
		c.Engine.PriceConvention = "maker"
	}
	if c.Replay == nil {
		c.Replay = &ReplayConfig{}
	}
	if c.Replay.DepthLevels == 0 {
		c.Replay.DepthLevels = 10
	}
	if c.Replay.LogLevel == "" {
		c.Replay.LogLevel = "info"
	}
}

// Options translates the engine section into book options.
func (c *EngineConfig) Options(log *zap.Logger) []orderbook.Option {
	pc := orderbook.PriceMaker
	switch c.PriceConvention {
	case "taker":
		pc = orderbook.PriceTaker
	case "mid":
		pc = orderbook.PriceMid
	}
	return []orderbook.Option{
		orderbook.WithCapacity(c.Capacity),
		orderbook.WithPriceConvention(pc),
		orderbook.WithStrictChecks(c.StrictChecks),
		orderbook.WithLogger(log),
	}
}
