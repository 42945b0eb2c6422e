package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/thu-HZML/SmartPaste-sub000/config"
	"github.com/thu-HZML/SmartPaste-sub000/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store owns the sqlite handle. The path can be swapped at runtime
// (user moves the data directory); reads of the handle take the read
// lock, a swap takes the write lock.
type Store struct {
	mu   sync.RWMutex
	db   *gorm.DB
	path string
}

var RedisClient *redis.Client

func Open(path string) (*Store, error) {
	db, err := openAndMigrate(path)
	if err != nil {
		return nil, err
	}

	log.Printf("sqlite 数据库已打开: %s", path)
	return &Store{db: db, path: path}, nil
}

func openAndMigrate(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("创建数据目录失败: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("启用外键约束失败: %w", err)
	}

	if err := db.AutoMigrate(
		&models.ClipboardItem{},
		&models.Folder{},
		&models.FolderItem{},
		&models.Extension{},
		&models.PrivacyMark{},
	); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// DB returns the current handle. Callers must not retain it across a
// SwitchPath; repositories fetch it per call.
func (s *Store) DB() *gorm.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// SwitchPath opens the database at the new location and swaps it in.
// The old handle is closed after the swap; in-flight calls holding the
// old handle finish against the old file.
func (s *Store) SwitchPath(path string) error {
	db, err := openAndMigrate(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	old := s.db
	s.db = db
	s.path = path
	s.mu.Unlock()

	log.Printf("数据库路径已切换: %s", path)

	if sqlDB, err := old.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func InitRedis(cfg *config.RedisConfig) error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	log.Println("Redis 客户端初始化成功")
	return nil
}
