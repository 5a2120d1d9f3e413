package toolfactory

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/nutritionai/tools/nutritionai"
	"github.com/effective-security/nutritionai/tools/tavily"
	"github.com/effective-security/x/configloader"
	"github.com/go-playground/validator/v10"
)

const (
	// CacheMemory is the in-process cache
	CacheMemory = "memory"
	// CacheRedis is the redis cache
	CacheRedis = "redis"
	// CacheNone disables the cache
	CacheNone = "none"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Config struct {
	// Specs specifies the list of tool specs to create,
	// if empty, only nutrition_ai is created.
	Specs []string `json:"specs,omitempty" yaml:"specs,omitempty" validate:"dive,oneof=nutrition_ai web_search"`
	// NutritionAI specifies the Passio Nutrition AI configuration
	NutritionAI nutritionai.Config `json:"nutrition_ai" yaml:"nutrition_ai"`
	// Tavily specifies the web search configuration
	Tavily tavily.Config `json:"tavily" yaml:"tavily"`
	// Cache specifies the cache for access tokens and search results
	Cache CacheConfig `json:"cache" yaml:"cache"`
}

// CacheConfig specifies the cache
type CacheConfig struct {
	// Type is memory|redis|none, memory by default
	Type string `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,oneof=memory redis none"`
	// URL is the redis URL: redis://localhost:6379/0
	URL string `json:"url,omitempty" yaml:"url,omitempty" validate:"required_if=Type redis"`
	// Prefix is the prefix for the cache keys
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// Validate returns error if the configuration is invalid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// LoadConfig from file,
// the environment variables in the file are expanded.
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file != "" {
		err := configloader.UnmarshalAndExpand(file, cfg)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to load config %s", file)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
