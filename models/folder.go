package models

// Folder groups items many-to-many. NumItems is denormalized and must
// equal the number of folder_items rows for the folder.
type Folder struct {
	ID       string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	NumItems int64  `gorm:"not null;default:0" json:"num_items"`
}

func (Folder) TableName() string {
	return "folders"
}

type FolderItem struct {
	FolderID string `gorm:"primaryKey;type:varchar(64)" json:"folder_id"`
	ItemID   string `gorm:"primaryKey;type:varchar(64);index" json:"item_id"`
}

func (FolderItem) TableName() string {
	return "folder_items"
}
