package repositories

import (
	"context"

	"github.com/thu-HZML/SmartPaste-sub000/database"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type GormTxManager struct {
	store *database.Store
}

func NewGormTxManager(store *database.Store) *GormTxManager {
	return &GormTxManager{store: store}
}

func (m *GormTxManager) WithTransaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	return m.store.DB().Transaction(fn)
}

type GormRepositories struct {
	store *database.Store
	redis *redis.Client
}

func NewGormRepositories(store *database.Store, redisClient *redis.Client) *GormRepositories {
	return &GormRepositories{store: store, redis: redisClient}
}

func (r *GormRepositories) BuildContainer() Container {
	var latest LatestItemCache
	if r.redis != nil {
		latest = NewRedisLatestItemCache(r.redis)
	} else {
		latest = NewMemoryLatestItemCache()
	}

	return Container{
		TxManager:  NewGormTxManager(r.store),
		Items:      NewGormItemRepository(r.store),
		Folders:    NewGormFolderRepository(r.store),
		Extensions: NewGormExtensionRepository(r.store),
		Privacy:    NewGormPrivacyRepository(r.store),
		LatestItem: latest,
	}
}

func useTx(db *gorm.DB, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
