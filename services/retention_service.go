package services

import (
	"context"
	"net/http"
	"time"

	"github.com/thu-HZML/SmartPaste-sub000/config"
	"github.com/thu-HZML/SmartPaste-sub000/logger"
	"github.com/thu-HZML/SmartPaste-sub000/repositories"

	"gorm.io/gorm"
)

// CleanupNotifier wakes the retention worker after an insert. The
// channel holds one pending signal; extra notifications while one is
// queued are dropped, the next run covers them anyway.
type CleanupNotifier struct {
	ch chan struct{}
}

func NewCleanupNotifier() *CleanupNotifier {
	return &CleanupNotifier{ch: make(chan struct{}, 1)}
}

func (n *CleanupNotifier) Notify() {
	if n == nil {
		return
	}
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

func (n *CleanupNotifier) C() <-chan struct{} {
	return n.ch
}

type RetentionService interface {
	DeleteExpired(ctx context.Context) (int64, error)
	EnforceMaxCount(ctx context.Context) (int64, error)
	RunCleanup(ctx context.Context) (int64, error)
	StartWorker(ctx context.Context)
}

type retentionService struct {
	txManager repositories.TxManager
	items     repositories.ItemRepository
	folders   repositories.FolderRepository
	notifier  *CleanupNotifier
	cfg       config.RetentionConfig
}

func NewRetentionService(txManager repositories.TxManager, items repositories.ItemRepository, folders repositories.FolderRepository, notifier *CleanupNotifier, cfg config.RetentionConfig) RetentionService {
	return &retentionService{txManager: txManager, items: items, folders: folders, notifier: notifier, cfg: cfg}
}

// DeleteExpired drops non-favorite items older than the retention
// window. Favorites never expire. Folder counts are refreshed in the
// same transaction so evicted members do not leave stale totals.
func (s *retentionService) DeleteExpired(ctx context.Context) (int64, error) {
	if s.cfg.RetentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UnixMilli() - int64(s.cfg.RetentionDays)*86400*1000

	var rows int64
	err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		rows, err = s.items.DeleteExpired(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		if rows > 0 {
			return s.folders.RecountAll(ctx, tx)
		}
		return nil
	})
	if err != nil {
		return 0, newAppError(http.StatusInternalServerError, "清理过期记录失败", err)
	}
	return rows, nil
}

// EnforceMaxCount trims the oldest non-favorite items until the
// non-favorite count fits the cap. A cap of 0 disables the policy.
func (s *retentionService) EnforceMaxCount(ctx context.Context) (int64, error) {
	if s.cfg.MaxHistoryItems == 0 {
		return 0, nil
	}

	var rows int64
	err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		count, err := s.items.CountNonFavorite(ctx, tx)
		if err != nil {
			return err
		}
		excess := count - int64(s.cfg.MaxHistoryItems)
		if excess <= 0 {
			return nil
		}

		rows, err = s.items.DeleteOldestNonFavorite(ctx, tx, excess)
		if err != nil {
			return err
		}
		if rows > 0 {
			return s.folders.RecountAll(ctx, tx)
		}
		return nil
	})
	if err != nil {
		return 0, newAppError(http.StatusInternalServerError, "清理超量记录失败", err)
	}
	return rows, nil
}

func (s *retentionService) RunCleanup(ctx context.Context) (int64, error) {
	expired, err := s.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	trimmed, err := s.EnforceMaxCount(ctx)
	if err != nil {
		return expired, err
	}
	return expired + trimmed, nil
}

// StartWorker runs cleanup on a fixed interval and whenever an insert
// signals the notifier. It exits when the context is cancelled.
func (s *retentionService) StartWorker(ctx context.Context) {
	interval := time.Duration(s.cfg.CleanupInterval) * time.Second
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		logger.Infof("清理任务已启动，间隔 %s", interval)
		for {
			select {
			case <-ctx.Done():
				logger.Infof("清理任务已停止")
				return
			case <-ticker.C:
			case <-s.notifier.C():
			}

			removed, err := s.RunCleanup(ctx)
			if err != nil {
				logger.Errorf("清理历史记录失败: %v", err)
				continue
			}
			if removed > 0 {
				logger.Infof("清理历史记录完成，删除 %d 条", removed)
			}
		}
	}()
}
