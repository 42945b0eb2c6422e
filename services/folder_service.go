package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/thu-HZML/SmartPaste-sub000/models"
	"github.com/thu-HZML/SmartPaste-sub000/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FolderService interface {
	Create(ctx context.Context, name string) (models.Folder, error)
	List(ctx context.Context) ([]models.Folder, error)
	Get(ctx context.Context, id string) (*models.Folder, error)
	Rename(ctx context.Context, id string, name string) (models.Folder, error)
	Delete(ctx context.Context, id string) (int64, error)
	AddItem(ctx context.Context, folderID string, itemID string) (bool, error)
	RemoveItem(ctx context.Context, folderID string, itemID string) (bool, error)
	ListItems(ctx context.Context, folderName string) ([]models.ClipboardItem, error)
	ListByItem(ctx context.Context, itemID string) ([]models.Folder, error)
	CountItems(ctx context.Context, folderID string) (int64, error)
}

type folderService struct {
	txManager TxManager
	folders   repositories.FolderRepository
	items     repositories.ItemRepository
}

func NewFolderService(txManager TxManager, folders repositories.FolderRepository, items repositories.ItemRepository) FolderService {
	return &folderService{txManager: txManager, folders: folders, items: items}
}

func (s *folderService) Create(ctx context.Context, name string) (models.Folder, error) {
	if name == "" {
		return models.Folder{}, newAppError(http.StatusBadRequest, "收藏夹名称不能为空", nil)
	}

	folder := models.Folder{ID: uuid.NewString(), Name: name, NumItems: 0}
	if err := s.folders.Create(ctx, nil, &folder); err != nil {
		return models.Folder{}, newAppError(http.StatusInternalServerError, "创建收藏夹失败", err)
	}
	return folder, nil
}

func (s *folderService) List(ctx context.Context) ([]models.Folder, error) {
	folders, err := s.folders.ListAll(ctx, nil)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "获取收藏夹列表失败", err)
	}
	return folders, nil
}

func (s *folderService) Get(ctx context.Context, id string) (*models.Folder, error) {
	folder, err := s.folders.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, newAppError(http.StatusInternalServerError, "查询收藏夹失败", err)
	}
	return &folder, nil
}

func (s *folderService) Rename(ctx context.Context, id string, name string) (models.Folder, error) {
	if name == "" {
		return models.Folder{}, newAppError(http.StatusBadRequest, "收藏夹名称不能为空", nil)
	}

	rows, err := s.folders.Rename(ctx, nil, id, name)
	if err != nil {
		return models.Folder{}, newAppError(http.StatusInternalServerError, "重命名收藏夹失败", err)
	}
	if rows == 0 {
		return models.Folder{}, newAppError(http.StatusNotFound, "收藏夹不存在", nil)
	}
	return s.folders.GetByID(ctx, nil, id)
}

// Delete removes the folder and its memberships. Items stay in the
// history; a folder only groups them.
func (s *folderService) Delete(ctx context.Context, id string) (int64, error) {
	var rows int64
	err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.folders.DeleteMembersByFolder(ctx, tx, id); err != nil {
			return err
		}
		deleted, err := s.folders.DeleteByID(ctx, tx, id)
		if err != nil {
			return err
		}
		rows = deleted
		return nil
	})
	if err != nil {
		return 0, newAppError(http.StatusInternalServerError, "删除收藏夹失败", err)
	}
	return rows, nil
}

// AddItem inserts the membership and bumps the counter only when the
// pair was not already present, so repeated adds keep counts honest.
func (s *folderService) AddItem(ctx context.Context, folderID string, itemID string) (bool, error) {
	if _, err := s.folders.GetByID(ctx, nil, folderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, newAppError(http.StatusNotFound, "收藏夹不存在", nil)
		}
		return false, newAppError(http.StatusInternalServerError, "查询收藏夹失败", err)
	}
	if _, err := s.items.GetByID(ctx, nil, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, newAppError(http.StatusNotFound, "记录不存在", nil)
		}
		return false, newAppError(http.StatusInternalServerError, "查询剪贴板记录失败", err)
	}

	var added bool
	err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		inserted, err := s.folders.AddMember(ctx, tx, folderID, itemID)
		if err != nil {
			return err
		}
		added = inserted
		if inserted {
			return s.folders.AdjustCount(ctx, tx, folderID, 1)
		}
		return nil
	})
	if err != nil {
		return false, newAppError(http.StatusInternalServerError, "添加到收藏夹失败", err)
	}
	return added, nil
}

func (s *folderService) RemoveItem(ctx context.Context, folderID string, itemID string) (bool, error) {
	var removed bool
	err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		deleted, err := s.folders.RemoveMember(ctx, tx, folderID, itemID)
		if err != nil {
			return err
		}
		removed = deleted
		if deleted {
			return s.folders.AdjustCount(ctx, tx, folderID, -1)
		}
		return nil
	})
	if err != nil {
		return false, newAppError(http.StatusInternalServerError, "从收藏夹移除失败", err)
	}
	return removed, nil
}

func (s *folderService) ListItems(ctx context.Context, folderName string) ([]models.ClipboardItem, error) {
	items, err := s.folders.ListItemsByFolderName(ctx, nil, folderName)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "获取收藏夹内容失败", err)
	}
	return items, nil
}

func (s *folderService) ListByItem(ctx context.Context, itemID string) ([]models.Folder, error) {
	folders, err := s.folders.ListByItem(ctx, nil, itemID)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "获取所属收藏夹失败", err)
	}
	return folders, nil
}

func (s *folderService) CountItems(ctx context.Context, folderID string) (int64, error) {
	count, err := s.folders.CountMembers(ctx, nil, folderID)
	if err != nil {
		return 0, newAppError(http.StatusInternalServerError, "统计收藏夹数量失败", err)
	}
	return count, nil
}
