package core

import (
	"context"

	"github.com/anoixa/art-gallery/cache"
	"github.com/anoixa/art-gallery/storage"
	"gorm.io/gorm"
)

func checkDatabaseHealth(db *gorm.DB) string {
	if db == nil {
		return "not initialized"
	}
	sqlDB, err := db.DB()
	if err != nil {
		return "error: " + err.Error()
	}
	if err := sqlDB.Ping(); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func checkCacheHealth(cacheFactory *cache.Factory) string {
	if cacheFactory == nil {
		return "not initialized"
	}
	if cacheFactory.Provider() != nil {
		return "ok"
	}
	return "not initialized"
}

func checkStorageHealth(storageFactory *storage.Factory) string {
	if storageFactory == nil {
		return "not initialized"
	}

	provider := storageFactory.GetDefault()
	if provider == nil {
		return "error: no default storage provider"
	}

	if err := provider.Health(context.Background()); err != nil {
		return "error: " + err.Error()
	}

	return "ok"
}
