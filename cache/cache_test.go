package cache

import (
	"context"
	"testing"
	"time"

	"github.com/anoixa/art-gallery/cache/types"
	"github.com/anoixa/art-gallery/config"
	"github.com/stretchr/testify/assert"
)

func TestNewFactory_Memory(t *testing.T) {
	factory, err := NewFactory(&config.Config{CacheType: "memory"})
	assert.NoError(t, err)
	defer factory.Close()

	assert.Equal(t, "memory", factory.Provider().Name())
}

func TestNewFactory_UnsupportedType(t *testing.T) {
	_, err := NewFactory(&config.Config{CacheType: "memcached"})
	assert.Error(t, err)
}

func TestFactory_SetGetDelete(t *testing.T) {
	factory, err := NewFactory(&config.Config{CacheType: "memory"})
	assert.NoError(t, err)
	defer factory.Close()

	ctx := context.Background()

	type stats struct {
		Views int64 `json:"views"`
		Likes int64 `json:"likes"`
	}

	err = factory.Set(ctx, "stats:1", stats{Views: 10, Likes: 3}, time.Minute)
	assert.NoError(t, err)

	var got stats
	err = factory.Get(ctx, "stats:1", &got)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), got.Views)
	assert.Equal(t, int64(3), got.Likes)

	exists, err := factory.Exists(ctx, "stats:1")
	assert.NoError(t, err)
	assert.True(t, exists)

	assert.NoError(t, factory.Delete(ctx, "stats:1"))

	err = factory.Get(ctx, "stats:1", &got)
	assert.True(t, types.IsCacheMiss(err))
}

func TestFactory_GetMiss(t *testing.T) {
	factory, err := NewFactory(&config.Config{CacheType: "memory"})
	assert.NoError(t, err)
	defer factory.Close()

	var dest string
	err = factory.Get(context.Background(), "missing", &dest)
	assert.True(t, types.IsCacheMiss(err))
}

func TestKeyBuilder(t *testing.T) {
	kb := NewKeyBuilder("artwork")
	assert.Equal(t, "artwork", kb.Build())
	assert.Equal(t, "artwork:1:views", kb.Build("1", "views"))
	assert.Equal(t, "artwork:42", kb.BuildID(42))

	assert.Equal(t, "site_stats", SiteStats.Build())
	assert.Equal(t, "artist_stats:7", ArtistStats.BuildID(uint(7)))
}
