package repositories

import (
	"context"

	"github.com/thu-HZML/SmartPaste-sub000/database"
	"github.com/thu-HZML/SmartPaste-sub000/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormFolderRepository struct {
	store *database.Store
}

func NewGormFolderRepository(store *database.Store) *GormFolderRepository {
	return &GormFolderRepository{store: store}
}

func (r *GormFolderRepository) db(tx *gorm.DB) *gorm.DB {
	return useTx(r.store.DB(), tx)
}

func (r *GormFolderRepository) Create(_ context.Context, tx *gorm.DB, folder *models.Folder) error {
	return r.db(tx).Create(folder).Error
}

func (r *GormFolderRepository) InsertIgnore(_ context.Context, tx *gorm.DB, folder *models.Folder) error {
	return r.db(tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(folder).Error
}

func (r *GormFolderRepository) GetByID(_ context.Context, tx *gorm.DB, id string) (models.Folder, error) {
	var folder models.Folder
	err := r.db(tx).Where("id = ?", id).First(&folder).Error
	return folder, err
}

func (r *GormFolderRepository) ListAll(_ context.Context, tx *gorm.DB) ([]models.Folder, error) {
	var folders []models.Folder
	err := r.db(tx).Order("name ASC").Find(&folders).Error
	return folders, err
}

func (r *GormFolderRepository) Rename(_ context.Context, tx *gorm.DB, id string, name string) (int64, error) {
	res := r.db(tx).Model(&models.Folder{}).Where("id = ?", id).Update("name", name)
	return res.RowsAffected, res.Error
}

func (r *GormFolderRepository) DeleteByID(_ context.Context, tx *gorm.DB, id string) (int64, error) {
	res := r.db(tx).Where("id = ?", id).Delete(&models.Folder{})
	return res.RowsAffected, res.Error
}

func (r *GormFolderRepository) AddMember(_ context.Context, tx *gorm.DB, folderID string, itemID string) (bool, error) {
	res := r.db(tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "folder_id"}, {Name: "item_id"}},
		DoNothing: true,
	}).Create(&models.FolderItem{FolderID: folderID, ItemID: itemID})
	return res.RowsAffected > 0, res.Error
}

func (r *GormFolderRepository) RemoveMember(_ context.Context, tx *gorm.DB, folderID string, itemID string) (bool, error) {
	res := r.db(tx).Where("folder_id = ? AND item_id = ?", folderID, itemID).Delete(&models.FolderItem{})
	return res.RowsAffected > 0, res.Error
}

func (r *GormFolderRepository) InsertIgnoreMember(_ context.Context, tx *gorm.DB, rel *models.FolderItem) error {
	return r.db(tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "folder_id"}, {Name: "item_id"}},
		DoNothing: true,
	}).Create(rel).Error
}

// AdjustCount shifts num_items by delta. A negative delta never takes
// the counter below zero.
func (r *GormFolderRepository) AdjustCount(_ context.Context, tx *gorm.DB, folderID string, delta int64) error {
	db := r.db(tx).Model(&models.Folder{}).Where("id = ?", folderID)
	if delta < 0 {
		db = db.Where("num_items > 0")
	}
	return db.Update("num_items", gorm.Expr("num_items + ?", delta)).Error
}

func (r *GormFolderRepository) CountMembers(_ context.Context, tx *gorm.DB, folderID string) (int64, error) {
	var count int64
	err := r.db(tx).Model(&models.FolderItem{}).Where("folder_id = ?", folderID).Count(&count).Error
	return count, err
}

// RecountAll rebuilds every folder's num_items from the membership
// relation, used after bulk item deletions.
func (r *GormFolderRepository) RecountAll(_ context.Context, tx *gorm.DB) error {
	return r.db(tx).Exec(
		"UPDATE folders SET num_items = (SELECT COUNT(*) FROM folder_items WHERE folder_items.folder_id = folders.id)",
	).Error
}

func (r *GormFolderRepository) ListItemsByFolderName(_ context.Context, tx *gorm.DB, name string) ([]models.ClipboardItem, error) {
	var items []models.ClipboardItem
	err := r.db(tx).Model(&models.ClipboardItem{}).
		Select("items.*").
		Joins("JOIN folder_items ON folder_items.item_id = items.id").
		Joins("JOIN folders ON folders.id = folder_items.folder_id").
		Where("folders.name = ?", name).
		Order("items.timestamp DESC").
		Find(&items).Error
	return items, err
}

func (r *GormFolderRepository) ListByItem(_ context.Context, tx *gorm.DB, itemID string) ([]models.Folder, error) {
	var folders []models.Folder
	err := r.db(tx).Model(&models.Folder{}).
		Select("folders.*").
		Joins("JOIN folder_items ON folder_items.folder_id = folders.id").
		Where("folder_items.item_id = ?", itemID).
		Find(&folders).Error
	return folders, err
}

func (r *GormFolderRepository) ListAllMembers(_ context.Context, tx *gorm.DB) ([]models.FolderItem, error) {
	var rels []models.FolderItem
	err := r.db(tx).Find(&rels).Error
	return rels, err
}

func (r *GormFolderRepository) DeleteMembersByFolder(_ context.Context, tx *gorm.DB, folderID string) error {
	return r.db(tx).Where("folder_id = ?", folderID).Delete(&models.FolderItem{}).Error
}

func (r *GormFolderRepository) DeleteMembersByItem(_ context.Context, tx *gorm.DB, itemID string) error {
	return r.db(tx).Where("item_id = ?", itemID).Delete(&models.FolderItem{}).Error
}
