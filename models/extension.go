package models

// Extension is a sparse side row per item: OCR text for images and a
// base64 icon. Either column may be missing independently.
type Extension struct {
	ItemID   string  `gorm:"primaryKey;type:varchar(64)" json:"item_id"`
	OCRText  *string `gorm:"column:ocr_text;type:text" json:"ocr_text"`
	IconData *string `gorm:"type:text" json:"icon_data"`
}

func (Extension) TableName() string {
	return "extensions"
}
