package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/art-gallery/cache/memory"
	"github.com/anoixa/art-gallery/cache/redis"
	"github.com/anoixa/art-gallery/cache/types"
	"github.com/anoixa/art-gallery/config"
)

// Factory 缓存工厂，持有当前配置的缓存提供者
type Factory struct {
	provider types.Provider
}

// NewFactory 根据配置创建缓存工厂
func NewFactory(cfg *config.Config) (*Factory, error) {
	cacheType := cfg.CacheType
	if cacheType == "" {
		cacheType = "memory"
	}

	var provider types.Provider
	var err error

	switch cacheType {
	case "memory":
		provider, err = memory.NewMemory(memory.DefaultConfig())
	case "redis":
		provider, err = redis.NewRedis(cfg.CacheRedisAddr, cfg.CacheRedisPassword, cfg.CacheRedisDB)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheType)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s cache provider: %w", cacheType, err)
	}

	log.Printf("Initialized '%s' cache provider", provider.Name())
	return &Factory{provider: provider}, nil
}

// Provider 返回当前缓存提供者
func (f *Factory) Provider() types.Provider {
	return f.provider
}

// Set 设置缓存项
func (f *Factory) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return f.provider.Set(ctx, key, value, expiration)
}

// Get 获取缓存项
func (f *Factory) Get(ctx context.Context, key string, dest interface{}) error {
	return f.provider.Get(ctx, key, dest)
}

// Delete 删除缓存项
func (f *Factory) Delete(ctx context.Context, key string) error {
	return f.provider.Delete(ctx, key)
}

// Exists 检查缓存项是否存在
func (f *Factory) Exists(ctx context.Context, key string) (bool, error) {
	return f.provider.Exists(ctx, key)
}

// Close 关闭缓存提供者
func (f *Factory) Close() error {
	return f.provider.Close()
}
