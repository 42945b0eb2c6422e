package repositories

import (
	"context"

	"github.com/thu-HZML/SmartPaste-sub000/database"
	"github.com/thu-HZML/SmartPaste-sub000/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormExtensionRepository struct {
	store *database.Store
}

func NewGormExtensionRepository(store *database.Store) *GormExtensionRepository {
	return &GormExtensionRepository{store: store}
}

func (r *GormExtensionRepository) db(tx *gorm.DB) *gorm.DB {
	return useTx(r.store.DB(), tx)
}

// UpsertOCRText writes only the ocr_text column; existing icon data on
// the row is preserved.
func (r *GormExtensionRepository) UpsertOCRText(_ context.Context, tx *gorm.DB, itemID string, ocrText string) error {
	return r.db(tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"ocr_text"}),
	}).Create(&models.Extension{ItemID: itemID, OCRText: &ocrText}).Error
}

// UpsertIconData writes only the icon_data column; existing OCR text on
// the row is preserved.
func (r *GormExtensionRepository) UpsertIconData(_ context.Context, tx *gorm.DB, itemID string, iconData string) error {
	return r.db(tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"icon_data"}),
	}).Create(&models.Extension{ItemID: itemID, IconData: &iconData}).Error
}

func (r *GormExtensionRepository) InsertIgnore(_ context.Context, tx *gorm.DB, ext *models.Extension) error {
	return r.db(tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_id"}},
		DoNothing: true,
	}).Create(ext).Error
}

func (r *GormExtensionRepository) GetByItemID(_ context.Context, tx *gorm.DB, itemID string) (models.Extension, error) {
	var ext models.Extension
	err := r.db(tx).Where("item_id = ?", itemID).First(&ext).Error
	return ext, err
}

func (r *GormExtensionRepository) ListAll(_ context.Context, tx *gorm.DB) ([]models.Extension, error) {
	var exts []models.Extension
	err := r.db(tx).Find(&exts).Error
	return exts, err
}

func (r *GormExtensionRepository) SearchItemsByOCR(_ context.Context, tx *gorm.DB, query string) ([]models.ClipboardItem, error) {
	var items []models.ClipboardItem
	err := r.db(tx).Model(&models.ClipboardItem{}).
		Select("items.*").
		Joins("JOIN extensions ON extensions.item_id = items.id").
		Where("extensions.ocr_text LIKE ?", "%"+query+"%").
		Order("items.timestamp DESC").
		Find(&items).Error
	return items, err
}

func (r *GormExtensionRepository) DeleteByItemID(_ context.Context, tx *gorm.DB, itemID string) error {
	return r.db(tx).Where("item_id = ?", itemID).Delete(&models.Extension{}).Error
}
