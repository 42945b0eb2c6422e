package models

// PrivacyMark flags an item whose content matched a sensitive-data
// detector. Membership is a plain set; which detector matched is not
// recorded.
type PrivacyMark struct {
	ItemID string `gorm:"primaryKey;type:varchar(64)" json:"item_id"`
}

func (PrivacyMark) TableName() string {
	return "privacy_marks"
}
