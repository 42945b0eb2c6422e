package services

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/thu-HZML/SmartPaste-sub000/config"
	"github.com/thu-HZML/SmartPaste-sub000/logger"
	"github.com/thu-HZML/SmartPaste-sub000/models"
	"github.com/thu-HZML/SmartPaste-sub000/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ItemService interface {
	Insert(ctx context.Context, item models.ClipboardItem) (models.ClipboardItem, error)
	InsertText(ctx context.Context, text string) (models.ClipboardItem, error)
	Latest(ctx context.Context) (*models.ClipboardItem, error)
	Get(ctx context.Context, id string) (*models.ClipboardItem, error)
	List(ctx context.Context) ([]models.ClipboardItem, error)
	FilterByType(ctx context.Context, itemType string) ([]models.ClipboardItem, error)
	FilterByFavorite(ctx context.Context, favorite bool) ([]models.ClipboardItem, error)
	FavoriteCount(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	Clear(ctx context.Context, kind string, keepFavorites bool) (int64, error)
	UpdateContent(ctx context.Context, id string, content string) (models.ClipboardItem, error)
	UpdateNotes(ctx context.Context, id string, notes string) (models.ClipboardItem, error)
	SetFavorite(ctx context.Context, id string, favorite bool) (int64, error)
	ToggleFavorite(ctx context.Context, id string) (string, error)
	Top(ctx context.Context, id string) (models.ClipboardItem, error)
	RewritePathPrefix(ctx context.Context, oldPrefix string, newPrefix string) (int64, error)
	Search(ctx context.Context, in repositories.SearchInput) ([]models.ClipboardItem, error)
}

type itemService struct {
	txManager  TxManager
	items      repositories.ItemRepository
	folders    repositories.FolderRepository
	extensions repositories.ExtensionRepository
	privacy    repositories.PrivacyRepository
	latest     repositories.LatestItemCache
	notifier   *CleanupNotifier
	storage    config.StorageConfig
}

func NewItemService(
	txManager TxManager,
	items repositories.ItemRepository,
	folders repositories.FolderRepository,
	extensions repositories.ExtensionRepository,
	privacy repositories.PrivacyRepository,
	latest repositories.LatestItemCache,
	notifier *CleanupNotifier,
	storage config.StorageConfig,
) ItemService {
	return &itemService{
		txManager:  txManager,
		items:      items,
		folders:    folders,
		extensions: extensions,
		privacy:    privacy,
		latest:     latest,
		notifier:   notifier,
		storage:    storage,
	}
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// Insert writes the item (last writer wins on id), refreshes the
// latest-item cache and pokes the cleanup worker. The notification is
// fire-and-forget; a missing consumer loses nothing that a later
// cleanup run cannot recover.
func (s *itemService) Insert(ctx context.Context, item models.ClipboardItem) (models.ClipboardItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Timestamp == 0 {
		item.Timestamp = nowMillis()
	}

	if err := s.items.Upsert(ctx, nil, &item); err != nil {
		return models.ClipboardItem{}, newAppError(http.StatusInternalServerError, "写入剪贴板记录失败", err)
	}

	if err := s.latest.Set(ctx, item); err != nil {
		logger.Debugf("更新最新记录缓存失败: %v", err)
	}
	s.notifier.Notify()

	return item, nil
}

func (s *itemService) InsertText(ctx context.Context, text string) (models.ClipboardItem, error) {
	size := int64(len(text))
	return s.Insert(ctx, models.ClipboardItem{
		ID:        uuid.NewString(),
		ItemType:  models.ItemTypeText,
		Content:   text,
		Size:      &size,
		Timestamp: nowMillis(),
	})
}

func (s *itemService) Latest(ctx context.Context) (*models.ClipboardItem, error) {
	item, err := s.latest.Get(ctx)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "读取最新记录缓存失败", err)
	}
	return item, nil
}

func (s *itemService) Get(ctx context.Context, id string) (*models.ClipboardItem, error) {
	item, err := s.items.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, newAppError(http.StatusInternalServerError, "查询剪贴板记录失败", err)
	}
	return &item, nil
}

func (s *itemService) List(ctx context.Context) ([]models.ClipboardItem, error) {
	items, err := s.items.ListAll(ctx, nil)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "获取剪贴板记录失败", err)
	}
	return items, nil
}

// FilterByType returns items of the given type. Querying "file" or
// "folder" returns both file and folder typed items; the two kinds are
// presented together in the history view.
func (s *itemService) FilterByType(ctx context.Context, itemType string) ([]models.ClipboardItem, error) {
	types := []string{itemType}
	if itemType == models.ItemTypeFile || itemType == models.ItemTypeFolder {
		types = []string{models.ItemTypeFile, models.ItemTypeFolder}
	}

	items, err := s.items.ListByTypes(ctx, nil, types)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "按类型筛选失败", err)
	}
	return items, nil
}

func (s *itemService) FilterByFavorite(ctx context.Context, favorite bool) ([]models.ClipboardItem, error) {
	items, err := s.items.ListByFavorite(ctx, nil, favorite)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "按收藏筛选失败", err)
	}
	return items, nil
}

func (s *itemService) FavoriteCount(ctx context.Context) (int64, error) {
	count, err := s.items.CountByFavorite(ctx, nil, true)
	if err != nil {
		return 0, newAppError(http.StatusInternalServerError, "统计收藏数量失败", err)
	}
	return count, nil
}

// Delete removes the row and its dependent rows, and best-effort
// removes the backing file or directory for path-typed items. A failed
// physical delete is logged and never aborts the database delete.
func (s *itemService) Delete(ctx context.Context, id string) (int64, error) {
	item, err := s.items.GetByID(ctx, nil, id)
	if err == nil {
		s.removeLocalResource(item)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, newAppError(http.StatusInternalServerError, "查询剪贴板记录失败", err)
	}

	var rows int64
	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.folders.DeleteMembersByItem(ctx, tx, id); err != nil {
			return err
		}
		if err := s.extensions.DeleteByItemID(ctx, tx, id); err != nil {
			return err
		}
		if err := s.privacy.DeleteByItemID(ctx, tx, id); err != nil {
			return err
		}
		deleted, err := s.items.DeleteByID(ctx, tx, id)
		if err != nil {
			return err
		}
		rows = deleted
		return s.folders.RecountAll(ctx, tx)
	})
	if err != nil {
		return 0, newAppError(http.StatusInternalServerError, "删除剪贴板记录失败", err)
	}
	return rows, nil
}

func (s *itemService) removeLocalResource(item models.ClipboardItem) {
	if item.ItemType == models.ItemTypeText {
		return
	}

	path := resolveLocalPath(s.storage, item.Content)
	info, err := os.Stat(path)
	if err != nil {
		logger.Debugf("本地路径不存在，跳过物理删除: %s", path)
		return
	}

	if item.ItemType == models.ItemTypeFolder || info.IsDir() {
		if err := os.RemoveAll(path); err != nil {
			logger.Debugf("删除本地文件夹失败 (ID: %s): %s - %v", item.ID, path, err)
		}
		return
	}
	if err := os.Remove(path); err != nil {
		logger.Debugf("删除本地文件失败 (ID: %s): %s - %v", item.ID, path, err)
	}
}

// resolveLocalPath maps the stored content to a filesystem path.
// Relative forms (files/..., ./files/..., .\files\...) resolve against
// the storage root; anything else is used as-is.
func resolveLocalPath(storage config.StorageConfig, content string) string {
	normalized := strings.ReplaceAll(content, "\\", "/")
	for _, prefix := range []string{"./files/", "files/"} {
		if strings.HasPrefix(normalized, prefix) {
			name := strings.TrimPrefix(normalized, prefix)
			return filepath.Join(storage.BasePath, "files", name)
		}
	}
	return content
}

func (s *itemService) Clear(ctx context.Context, kind string, keepFavorites bool) (int64, error) {
	var rows int64
	err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		deleted, err := s.items.Clear(ctx, tx, repositories.ClearInput{Kind: kind, KeepFavorites: keepFavorites})
		if err != nil {
			return err
		}
		rows = deleted
		return s.folders.RecountAll(ctx, tx)
	})
	if err != nil {
		return 0, newAppError(http.StatusInternalServerError, "批量删除失败", err)
	}
	return rows, nil
}

func (s *itemService) UpdateContent(ctx context.Context, id string, content string) (models.ClipboardItem, error) {
	rows, err := s.items.UpdateContent(ctx, nil, id, content)
	if err != nil {
		return models.ClipboardItem{}, newAppError(http.StatusInternalServerError, "更新内容失败", err)
	}
	if rows == 0 {
		return models.ClipboardItem{}, newAppError(http.StatusNotFound, "记录不存在", nil)
	}
	return s.items.GetByID(ctx, nil, id)
}

func (s *itemService) UpdateNotes(ctx context.Context, id string, notes string) (models.ClipboardItem, error) {
	rows, err := s.items.UpdateNotes(ctx, nil, id, notes)
	if err != nil {
		return models.ClipboardItem{}, newAppError(http.StatusInternalServerError, "更新备注失败", err)
	}
	if rows == 0 {
		return models.ClipboardItem{}, newAppError(http.StatusNotFound, "记录不存在", nil)
	}
	return s.items.GetByID(ctx, nil, id)
}

func (s *itemService) SetFavorite(ctx context.Context, id string, favorite bool) (int64, error) {
	rows, err := s.items.SetFavorite(ctx, nil, id, favorite)
	if err != nil {
		return 0, newAppError(http.StatusInternalServerError, "更新收藏状态失败", err)
	}
	return rows, nil
}

func (s *itemService) ToggleFavorite(ctx context.Context, id string) (string, error) {
	item, err := s.items.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", newAppError(http.StatusNotFound, "记录不存在", nil)
		}
		return "", newAppError(http.StatusInternalServerError, "查询收藏状态失败", err)
	}

	if item.IsFavorite {
		if _, err := s.SetFavorite(ctx, id, false); err != nil {
			return "", err
		}
		return "unfavorited", nil
	}
	if _, err := s.SetFavorite(ctx, id, true); err != nil {
		return "", err
	}
	return "favorited", nil
}

// Top re-stamps the item to now so it sorts first in the history.
func (s *itemService) Top(ctx context.Context, id string) (models.ClipboardItem, error) {
	rows, err := s.items.UpdateTimestamp(ctx, nil, id, nowMillis())
	if err != nil {
		return models.ClipboardItem{}, newAppError(http.StatusInternalServerError, "置顶失败", err)
	}
	if rows == 0 {
		return models.ClipboardItem{}, newAppError(http.StatusNotFound, "记录不存在", nil)
	}
	return s.items.GetByID(ctx, nil, id)
}

// RewritePathPrefix rewrites stored paths after the storage root moved.
// The whole batch commits or rolls back as one transaction. Relative
// paths stay untouched; they remain valid under the new root.
func (s *itemService) RewritePathPrefix(ctx context.Context, oldPrefix string, newPrefix string) (int64, error) {
	var count int64
	err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		rows, err := s.items.ListPathed(ctx, tx)
		if err != nil {
			return err
		}

		normalizedOld := strings.ReplaceAll(oldPrefix, "\\", "/")
		for _, row := range rows {
			normalized := strings.ReplaceAll(row.Content, "\\", "/")

			var newContent string
			switch {
			case strings.HasPrefix(normalized, normalizedOld):
				newContent = strings.Replace(row.Content, oldPrefix, newPrefix, 1)
			case strings.HasPrefix(normalized, "files/") || strings.HasPrefix(normalized, "./files/"):
				continue
			case strings.Contains(normalized, "/files/"):
				parts := strings.SplitN(normalized, "/files/", 2)
				newContent = newPrefix + "/files/" + parts[1]
			default:
				continue
			}

			if _, err := s.items.UpdateContent(ctx, tx, row.ID, newContent); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, newAppError(http.StatusInternalServerError, "更新文件路径失败", err)
	}
	return count, nil
}

func (s *itemService) Search(ctx context.Context, in repositories.SearchInput) ([]models.ClipboardItem, error) {
	items, err := s.items.Search(ctx, nil, in)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "搜索失败", err)
	}
	return items, nil
}
