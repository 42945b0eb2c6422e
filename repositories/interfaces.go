package repositories

import (
	"context"

	"github.com/thu-HZML/SmartPaste-sub000/models"

	"gorm.io/gorm"
)

type TxManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type SearchInput struct {
	// Query matches content, notes and OCR text as a substring.
	Query string
	// Kind is empty for no filter, a standard item type, "private", or
	// a folder id.
	Kind    string
	StartTS *int64
	EndTS   *int64
}

type ClearInput struct {
	// Kind follows the same convention as SearchInput.Kind.
	Kind          string
	KeepFavorites bool
}

type ItemRepository interface {
	Upsert(ctx context.Context, tx *gorm.DB, item *models.ClipboardItem) error
	InsertIgnore(ctx context.Context, tx *gorm.DB, item *models.ClipboardItem) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (models.ClipboardItem, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]models.ClipboardItem, error)
	ListByTypes(ctx context.Context, tx *gorm.DB, types []string) ([]models.ClipboardItem, error)
	ListByFavorite(ctx context.Context, tx *gorm.DB, favorite bool) ([]models.ClipboardItem, error)
	ListPathed(ctx context.Context, tx *gorm.DB) ([]models.ClipboardItem, error)
	Search(ctx context.Context, tx *gorm.DB, in SearchInput) ([]models.ClipboardItem, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, id string) (int64, error)
	Clear(ctx context.Context, tx *gorm.DB, in ClearInput) (int64, error)
	UpdateContent(ctx context.Context, tx *gorm.DB, id string, content string) (int64, error)
	UpdateNotes(ctx context.Context, tx *gorm.DB, id string, notes string) (int64, error)
	SetFavorite(ctx context.Context, tx *gorm.DB, id string, favorite bool) (int64, error)
	UpdateTimestamp(ctx context.Context, tx *gorm.DB, id string, timestamp int64) (int64, error)
	CountByFavorite(ctx context.Context, tx *gorm.DB, favorite bool) (int64, error)
	DeleteExpired(ctx context.Context, tx *gorm.DB, cutoff int64) (int64, error)
	CountNonFavorite(ctx context.Context, tx *gorm.DB) (int64, error)
	DeleteOldestNonFavorite(ctx context.Context, tx *gorm.DB, limit int64) (int64, error)
}

type FolderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, folder *models.Folder) error
	InsertIgnore(ctx context.Context, tx *gorm.DB, folder *models.Folder) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (models.Folder, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]models.Folder, error)
	Rename(ctx context.Context, tx *gorm.DB, id string, name string) (int64, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, id string) (int64, error)
	AddMember(ctx context.Context, tx *gorm.DB, folderID string, itemID string) (bool, error)
	RemoveMember(ctx context.Context, tx *gorm.DB, folderID string, itemID string) (bool, error)
	InsertIgnoreMember(ctx context.Context, tx *gorm.DB, rel *models.FolderItem) error
	AdjustCount(ctx context.Context, tx *gorm.DB, folderID string, delta int64) error
	CountMembers(ctx context.Context, tx *gorm.DB, folderID string) (int64, error)
	RecountAll(ctx context.Context, tx *gorm.DB) error
	ListItemsByFolderName(ctx context.Context, tx *gorm.DB, name string) ([]models.ClipboardItem, error)
	ListByItem(ctx context.Context, tx *gorm.DB, itemID string) ([]models.Folder, error)
	ListAllMembers(ctx context.Context, tx *gorm.DB) ([]models.FolderItem, error)
	DeleteMembersByFolder(ctx context.Context, tx *gorm.DB, folderID string) error
	DeleteMembersByItem(ctx context.Context, tx *gorm.DB, itemID string) error
}

type ExtensionRepository interface {
	UpsertOCRText(ctx context.Context, tx *gorm.DB, itemID string, ocrText string) error
	UpsertIconData(ctx context.Context, tx *gorm.DB, itemID string, iconData string) error
	InsertIgnore(ctx context.Context, tx *gorm.DB, ext *models.Extension) error
	GetByItemID(ctx context.Context, tx *gorm.DB, itemID string) (models.Extension, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]models.Extension, error)
	SearchItemsByOCR(ctx context.Context, tx *gorm.DB, query string) ([]models.ClipboardItem, error)
	DeleteByItemID(ctx context.Context, tx *gorm.DB, itemID string) error
}

type PrivacyRepository interface {
	Mark(ctx context.Context, tx *gorm.DB, itemID string) error
	Unmark(ctx context.Context, tx *gorm.DB, itemID string) error
	IsMarked(ctx context.Context, tx *gorm.DB, itemID string) (bool, error)
	ClearAll(ctx context.Context, tx *gorm.DB) (int64, error)
	ListMarkedItems(ctx context.Context, tx *gorm.DB) ([]models.ClipboardItem, error)
	DeleteByItemID(ctx context.Context, tx *gorm.DB, itemID string) error
}

// LatestItemCache is the shared last-inserted slot. Overwritten on
// every insert, read without touching the database; last write wins.
type LatestItemCache interface {
	Set(ctx context.Context, item models.ClipboardItem) error
	Get(ctx context.Context) (*models.ClipboardItem, error)
}

type Container struct {
	TxManager  TxManager
	Items      ItemRepository
	Folders    FolderRepository
	Extensions ExtensionRepository
	Privacy    PrivacyRepository
	LatestItem LatestItemCache
}
