package models

// SyncSnapshot is the cloud payload consumed by the merge protocol:
// four row arrays, inserted only where the local primary key is absent.
type SyncSnapshot struct {
	Items       []ClipboardItem `json:"items"`
	Folders     []Folder        `json:"folders"`
	FolderItems []FolderItem    `json:"folder_items"`
	Extensions  []Extension     `json:"extensions"`
}
