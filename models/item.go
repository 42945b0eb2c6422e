package models

const (
	ItemTypeText   = "text"
	ItemTypeImage  = "image"
	ItemTypeFile   = "file"
	ItemTypeFolder = "folder"
)

// ClipboardItem is one recorded clipboard capture. Content holds the
// text payload for text items and a path (absolute, or relative to the
// storage root) for image/file/folder items. Timestamp is milliseconds
// since epoch.
type ClipboardItem struct {
	ID         string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ItemType   string `gorm:"type:varchar(16);not null;index" json:"item_type"`
	Content    string `gorm:"type:text;not null" json:"content"`
	Size       *int64 `json:"size"`
	IsFavorite bool   `gorm:"not null;default:false;index" json:"is_favorite"`
	Notes      string `gorm:"type:text" json:"notes"`
	Timestamp  int64  `gorm:"not null;index" json:"timestamp"`
}

func (ClipboardItem) TableName() string {
	return "items"
}

func IsStandardItemType(t string) bool {
	switch t {
	case ItemTypeText, ItemTypeImage, ItemTypeFile, ItemTypeFolder:
		return true
	}
	return false
}
