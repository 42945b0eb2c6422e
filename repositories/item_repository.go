package repositories

import (
	"context"

	"github.com/thu-HZML/SmartPaste-sub000/database"
	"github.com/thu-HZML/SmartPaste-sub000/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormItemRepository struct {
	store *database.Store
}

func NewGormItemRepository(store *database.Store) *GormItemRepository {
	return &GormItemRepository{store: store}
}

func (r *GormItemRepository) db(tx *gorm.DB) *gorm.DB {
	return useTx(r.store.DB(), tx)
}

func (r *GormItemRepository) Upsert(_ context.Context, tx *gorm.DB, item *models.ClipboardItem) error {
	return r.db(tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(item).Error
}

func (r *GormItemRepository) InsertIgnore(_ context.Context, tx *gorm.DB, item *models.ClipboardItem) error {
	return r.db(tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(item).Error
}

func (r *GormItemRepository) GetByID(_ context.Context, tx *gorm.DB, id string) (models.ClipboardItem, error) {
	var item models.ClipboardItem
	err := r.db(tx).Where("id = ?", id).First(&item).Error
	return item, err
}

func (r *GormItemRepository) ListAll(_ context.Context, tx *gorm.DB) ([]models.ClipboardItem, error) {
	var items []models.ClipboardItem
	err := r.db(tx).Order("timestamp DESC").Find(&items).Error
	return items, err
}

func (r *GormItemRepository) ListByTypes(_ context.Context, tx *gorm.DB, types []string) ([]models.ClipboardItem, error) {
	var items []models.ClipboardItem
	err := r.db(tx).Where("item_type IN ?", types).Order("timestamp DESC").Find(&items).Error
	return items, err
}

func (r *GormItemRepository) ListByFavorite(_ context.Context, tx *gorm.DB, favorite bool) ([]models.ClipboardItem, error) {
	var items []models.ClipboardItem
	err := r.db(tx).Where("is_favorite = ?", favorite).Order("timestamp DESC").Find(&items).Error
	return items, err
}

// ListPathed returns the rows whose content is a filesystem path.
func (r *GormItemRepository) ListPathed(_ context.Context, tx *gorm.DB) ([]models.ClipboardItem, error) {
	var items []models.ClipboardItem
	err := r.db(tx).
		Where("item_type IN ?", []string{models.ItemTypeFile, models.ItemTypeImage, models.ItemTypeFolder}).
		Find(&items).Error
	return items, err
}

func (r *GormItemRepository) Search(_ context.Context, tx *gorm.DB, in SearchInput) ([]models.ClipboardItem, error) {
	pattern := "%" + in.Query + "%"
	db := r.db(tx).Model(&models.ClipboardItem{}).
		Select("items.*").
		Joins("LEFT JOIN extensions ON extensions.item_id = items.id").
		Where("items.content LIKE ? OR items.notes LIKE ? OR extensions.ocr_text LIKE ?", pattern, pattern, pattern)

	switch {
	case in.Kind == "":
		// no filter
	case models.IsStandardItemType(in.Kind):
		db = db.Where("items.item_type = ?", in.Kind)
	case in.Kind == "private":
		db = db.Joins("JOIN privacy_marks ON privacy_marks.item_id = items.id")
	default:
		// anything else is a folder id
		db = db.Joins("JOIN folder_items ON folder_items.item_id = items.id").
			Where("folder_items.folder_id = ?", in.Kind)
	}

	if in.StartTS != nil && in.EndTS != nil {
		db = db.Where("items.timestamp BETWEEN ? AND ?", *in.StartTS, *in.EndTS)
	}

	var items []models.ClipboardItem
	err := db.Order("items.timestamp DESC").Find(&items).Error
	return items, err
}

func (r *GormItemRepository) DeleteByID(_ context.Context, tx *gorm.DB, id string) (int64, error) {
	res := r.db(tx).Where("id = ?", id).Delete(&models.ClipboardItem{})
	return res.RowsAffected, res.Error
}

func (r *GormItemRepository) Clear(_ context.Context, tx *gorm.DB, in ClearInput) (int64, error) {
	db := r.db(tx)

	sub := db.Session(&gorm.Session{NewDB: true}).Model(&models.ClipboardItem{}).Select("items.id")
	switch {
	case in.Kind == "":
		// all rows
	case models.IsStandardItemType(in.Kind):
		sub = sub.Where("items.item_type = ?", in.Kind)
	case in.Kind == "private":
		sub = sub.Joins("JOIN privacy_marks ON privacy_marks.item_id = items.id")
	default:
		sub = sub.Joins("JOIN folder_items ON folder_items.item_id = items.id").
			Where("folder_items.folder_id = ?", in.Kind)
	}
	if in.KeepFavorites {
		sub = sub.Where("items.is_favorite = ?", false)
	}

	return deleteWithDependents(db, sub)
}

// deleteWithDependents removes the items selected by sub together with
// their folder memberships, extension rows and privacy marks. sqlite
// has no enforced foreign keys here, so the dependent tables are
// cleaned up explicitly. The id set is resolved up front because the
// selection may itself join the dependent tables.
func deleteWithDependents(db *gorm.DB, sub *gorm.DB) (int64, error) {
	var ids []string
	if err := sub.Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := db.Where("item_id IN ?", ids).Delete(&models.FolderItem{}).Error; err != nil {
		return 0, err
	}
	if err := db.Where("item_id IN ?", ids).Delete(&models.Extension{}).Error; err != nil {
		return 0, err
	}
	if err := db.Where("item_id IN ?", ids).Delete(&models.PrivacyMark{}).Error; err != nil {
		return 0, err
	}
	res := db.Where("id IN ?", ids).Delete(&models.ClipboardItem{})
	return res.RowsAffected, res.Error
}

func (r *GormItemRepository) UpdateContent(_ context.Context, tx *gorm.DB, id string, content string) (int64, error) {
	res := r.db(tx).Model(&models.ClipboardItem{}).Where("id = ?", id).Update("content", content)
	return res.RowsAffected, res.Error
}

func (r *GormItemRepository) UpdateNotes(_ context.Context, tx *gorm.DB, id string, notes string) (int64, error) {
	res := r.db(tx).Model(&models.ClipboardItem{}).Where("id = ?", id).Update("notes", notes)
	return res.RowsAffected, res.Error
}

func (r *GormItemRepository) SetFavorite(_ context.Context, tx *gorm.DB, id string, favorite bool) (int64, error) {
	res := r.db(tx).Model(&models.ClipboardItem{}).Where("id = ?", id).Update("is_favorite", favorite)
	return res.RowsAffected, res.Error
}

func (r *GormItemRepository) UpdateTimestamp(_ context.Context, tx *gorm.DB, id string, timestamp int64) (int64, error) {
	res := r.db(tx).Model(&models.ClipboardItem{}).Where("id = ?", id).Update("timestamp", timestamp)
	return res.RowsAffected, res.Error
}

func (r *GormItemRepository) CountByFavorite(_ context.Context, tx *gorm.DB, favorite bool) (int64, error) {
	var count int64
	err := r.db(tx).Model(&models.ClipboardItem{}).Where("is_favorite = ?", favorite).Count(&count).Error
	return count, err
}

func (r *GormItemRepository) DeleteExpired(_ context.Context, tx *gorm.DB, cutoff int64) (int64, error) {
	db := r.db(tx)
	sub := db.Session(&gorm.Session{NewDB: true}).Model(&models.ClipboardItem{}).
		Select("id").
		Where("timestamp < ? AND is_favorite = ?", cutoff, false)
	return deleteWithDependents(db, sub)
}

func (r *GormItemRepository) CountNonFavorite(_ context.Context, tx *gorm.DB) (int64, error) {
	return r.CountByFavorite(context.Background(), tx, false)
}

func (r *GormItemRepository) DeleteOldestNonFavorite(_ context.Context, tx *gorm.DB, limit int64) (int64, error) {
	db := r.db(tx)
	sub := db.Session(&gorm.Session{NewDB: true}).Model(&models.ClipboardItem{}).
		Select("id").
		Where("is_favorite = ?", false).
		Order("timestamp ASC").
		Limit(int(limit))
	return deleteWithDependents(db, sub)
}
