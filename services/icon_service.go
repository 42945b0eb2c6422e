package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"net/http"

	"github.com/thu-HZML/SmartPaste-sub000/config"
	"github.com/thu-HZML/SmartPaste-sub000/models"
	"github.com/thu-HZML/SmartPaste-sub000/repositories"

	"github.com/disintegration/imaging"
	"gorm.io/gorm"
)

type IconService interface {
	GenerateForItem(ctx context.Context, itemID string) (string, error)
	GenerateFromBytes(ctx context.Context, itemID string, data []byte) (string, error)
}

type iconService struct {
	items      repositories.ItemRepository
	extensions repositories.ExtensionRepository
	storage    config.StorageConfig
	cfg        config.IconConfig
}

func NewIconService(
	items repositories.ItemRepository,
	extensions repositories.ExtensionRepository,
	storage config.StorageConfig,
	cfg config.IconConfig,
) IconService {
	return &iconService{items: items, extensions: extensions, storage: storage, cfg: cfg}
}

// GenerateForItem renders a preview icon for an image item from its
// backing file and stores it on the extension row.
func (s *iconService) GenerateForItem(ctx context.Context, itemID string) (string, error) {
	item, err := s.items.GetByID(ctx, nil, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", newAppError(http.StatusNotFound, "记录不存在", nil)
		}
		return "", newAppError(http.StatusInternalServerError, "查询剪贴板记录失败", err)
	}
	if item.ItemType != models.ItemTypeImage {
		return "", newAppError(http.StatusBadRequest, "仅图片记录支持生成图标", nil)
	}

	src, err := imaging.Open(resolveLocalPath(s.storage, item.Content))
	if err != nil {
		return "", newAppError(http.StatusUnprocessableEntity, "读取图片失败", err)
	}
	return s.encodeAndStore(ctx, itemID, src)
}

func (s *iconService) GenerateFromBytes(ctx context.Context, itemID string, data []byte) (string, error) {
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", newAppError(http.StatusUnprocessableEntity, "解析图片失败", err)
	}
	return s.encodeAndStore(ctx, itemID, src)
}

func (s *iconService) encodeAndStore(ctx context.Context, itemID string, src image.Image) (string, error) {
	width, height := s.cfg.Width, s.cfg.Height
	if width <= 0 {
		width = 64
	}
	if height <= 0 {
		height = 64
	}

	icon := imaging.Fit(src, width, height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, icon, imaging.PNG); err != nil {
		return "", newAppError(http.StatusInternalServerError, "编码图标失败", err)
	}

	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())
	if err := s.extensions.UpsertIconData(ctx, nil, itemID, encoded); err != nil {
		return "", newAppError(http.StatusInternalServerError, "保存图标失败", err)
	}
	return encoded, nil
}
