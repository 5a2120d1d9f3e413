package toolfactory

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/nutritionai/store"
	"github.com/effective-security/nutritionai/tools"
	"github.com/effective-security/nutritionai/tools/nutritionai"
	"github.com/effective-security/nutritionai/tools/tavily"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/nutritionai", "toolfactory")

// NewSpec is a wrapper for CreateSpec to allow for overriding the default implementation.
var NewSpec = CreateSpec

// Factory is the interface for creating the tool specs.
type Factory interface {
	// Cache returns the shared cache, or nil if disabled.
	Cache() store.Cache
	// Spec returns the tool spec by name.
	Spec(name string) (tools.BaseToolSpec, error)
	// Toolset returns the toolset with all configured specs.
	Toolset(ctx context.Context) (*tools.Toolset, error)
}

// Load returns the factory from the config file
func Load(location string) (Factory, error) {
	cfg, err := LoadConfig(location)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

type factory struct {
	cfg   *Config
	cache store.Cache

	specs map[string]tools.BaseToolSpec
	lock  sync.Mutex
}

// New creates a new tool factory
func New(cfg *Config) (Factory, error) {
	cache, err := newCache(&cfg.Cache)
	if err != nil {
		return nil, err
	}
	return &factory{
		cfg:   cfg,
		cache: cache,
		specs: make(map[string]tools.BaseToolSpec),
	}, nil
}

func newCache(cfg *CacheConfig) (store.Cache, error) {
	switch values.StringsCoalesce(cfg.Type, CacheMemory) {
	case CacheMemory:
		return store.NewMemoryStore(), nil
	case CacheRedis:
		return store.NewRedisStoreFromURL(cfg.URL, cfg.Prefix)
	case CacheNone:
		return nil, nil
	}
	return nil, errors.Errorf("unsupported cache type: %s", cfg.Type)
}

// CreateSpec creates the tool spec by name
func CreateSpec(cfg *Config, cache store.Cache, name string) (tools.BaseToolSpec, error) {
	switch name {
	case nutritionai.SpecName:
		var opts []nutritionai.Option
		if cache != nil {
			opts = append(opts, nutritionai.WithCache(cache))
		}
		return nutritionai.New(&cfg.NutritionAI, opts...)
	case tavily.SpecName:
		return tavily.New(&cfg.Tavily)
	}
	return nil, errors.Errorf("unsupported tool spec: %s", name)
}

func (f *factory) Cache() store.Cache {
	return f.cache
}

func (f *factory) Spec(name string) (tools.BaseToolSpec, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if s, ok := f.specs[name]; ok {
		return s, nil
	}

	s, err := NewSpec(f.cfg, f.cache, name)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create tool spec %s", name)
	}
	f.specs[name] = s
	return s, nil
}

func (f *factory) Toolset(ctx context.Context) (*tools.Toolset, error) {
	names := f.cfg.Specs
	if len(names) == 0 {
		names = []string{nutritionai.SpecName}
	}

	var list []tools.BaseToolSpec
	for _, name := range names {
		s, err := f.Spec(name)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}

	logger.ContextKV(ctx, xlog.DEBUG, "reason", "toolset", "specs", names)
	return tools.NewToolset(list...)
}
