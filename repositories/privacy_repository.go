package repositories

import (
	"context"

	"github.com/thu-HZML/SmartPaste-sub000/database"
	"github.com/thu-HZML/SmartPaste-sub000/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormPrivacyRepository struct {
	store *database.Store
}

func NewGormPrivacyRepository(store *database.Store) *GormPrivacyRepository {
	return &GormPrivacyRepository{store: store}
}

func (r *GormPrivacyRepository) db(tx *gorm.DB) *gorm.DB {
	return useTx(r.store.DB(), tx)
}

func (r *GormPrivacyRepository) Mark(_ context.Context, tx *gorm.DB, itemID string) error {
	return r.db(tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_id"}},
		DoNothing: true,
	}).Create(&models.PrivacyMark{ItemID: itemID}).Error
}

func (r *GormPrivacyRepository) Unmark(_ context.Context, tx *gorm.DB, itemID string) error {
	return r.db(tx).Where("item_id = ?", itemID).Delete(&models.PrivacyMark{}).Error
}

func (r *GormPrivacyRepository) IsMarked(_ context.Context, tx *gorm.DB, itemID string) (bool, error) {
	var count int64
	err := r.db(tx).Model(&models.PrivacyMark{}).Where("item_id = ?", itemID).Count(&count).Error
	return count > 0, err
}

func (r *GormPrivacyRepository) ClearAll(_ context.Context, tx *gorm.DB) (int64, error) {
	res := r.db(tx).Where("1 = 1").Delete(&models.PrivacyMark{})
	return res.RowsAffected, res.Error
}

func (r *GormPrivacyRepository) ListMarkedItems(_ context.Context, tx *gorm.DB) ([]models.ClipboardItem, error) {
	var items []models.ClipboardItem
	err := r.db(tx).Model(&models.ClipboardItem{}).
		Select("items.*").
		Joins("JOIN privacy_marks ON privacy_marks.item_id = items.id").
		Order("items.timestamp DESC").
		Find(&items).Error
	return items, err
}

func (r *GormPrivacyRepository) DeleteByItemID(_ context.Context, tx *gorm.DB, itemID string) error {
	return r.db(tx).Where("item_id = ?", itemID).Delete(&models.PrivacyMark{}).Error
}
