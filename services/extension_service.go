package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/thu-HZML/SmartPaste-sub000/models"
	"github.com/thu-HZML/SmartPaste-sub000/repositories"

	"gorm.io/gorm"
)

type ExtensionService interface {
	SetOCRText(ctx context.Context, itemID string, ocrText string) error
	SetIconData(ctx context.Context, itemID string, iconData string) error
	Get(ctx context.Context, itemID string) (*models.Extension, error)
	SearchByOCR(ctx context.Context, query string) ([]models.ClipboardItem, error)
}

type extensionService struct {
	extensions repositories.ExtensionRepository
	items      repositories.ItemRepository
}

func NewExtensionService(extensions repositories.ExtensionRepository, items repositories.ItemRepository) ExtensionService {
	return &extensionService{extensions: extensions, items: items}
}

func (s *extensionService) requireItem(ctx context.Context, itemID string) error {
	if _, err := s.items.GetByID(ctx, nil, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newAppError(http.StatusNotFound, "记录不存在", nil)
		}
		return newAppError(http.StatusInternalServerError, "查询剪贴板记录失败", err)
	}
	return nil
}

// SetOCRText stores recognized text for an image item. Only the
// ocr_text column is written; an existing icon survives the update.
func (s *extensionService) SetOCRText(ctx context.Context, itemID string, ocrText string) error {
	if err := s.requireItem(ctx, itemID); err != nil {
		return err
	}
	if err := s.extensions.UpsertOCRText(ctx, nil, itemID, ocrText); err != nil {
		return newAppError(http.StatusInternalServerError, "保存识别文本失败", err)
	}
	return nil
}

func (s *extensionService) SetIconData(ctx context.Context, itemID string, iconData string) error {
	if err := s.requireItem(ctx, itemID); err != nil {
		return err
	}
	if err := s.extensions.UpsertIconData(ctx, nil, itemID, iconData); err != nil {
		return newAppError(http.StatusInternalServerError, "保存图标失败", err)
	}
	return nil
}

func (s *extensionService) Get(ctx context.Context, itemID string) (*models.Extension, error) {
	ext, err := s.extensions.GetByItemID(ctx, nil, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, newAppError(http.StatusInternalServerError, "查询扩展信息失败", err)
	}
	return &ext, nil
}

func (s *extensionService) SearchByOCR(ctx context.Context, query string) ([]models.ClipboardItem, error) {
	items, err := s.extensions.SearchItemsByOCR(ctx, nil, query)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "搜索识别文本失败", err)
	}
	return items, nil
}
