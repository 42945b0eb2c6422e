package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/thu-HZML/SmartPaste-sub000/models"
	"github.com/thu-HZML/SmartPaste-sub000/repositories"

	"gorm.io/gorm"
)

// MergeStats reports how many rows the snapshot actually added.
// Rows already present locally are skipped, so replaying the same
// snapshot yields all zeros.
type MergeStats struct {
	Items       int64 `json:"items"`
	Folders     int64 `json:"folders"`
	FolderItems int64 `json:"folder_items"`
	Extensions  int64 `json:"extensions"`
}

func (m MergeStats) Total() int64 {
	return m.Items + m.Folders + m.FolderItems + m.Extensions
}

// EncryptedSnapshot wraps a snapshot for transport. The payload is the
// JSON snapshot sealed with a key derived from the user passphrase and
// the embedded salt.
type EncryptedSnapshot struct {
	Salt    string `json:"salt"`
	Payload string `json:"payload"`
}

type SyncService interface {
	Export(ctx context.Context) (models.SyncSnapshot, error)
	Merge(ctx context.Context, snapshot models.SyncSnapshot) (MergeStats, error)
	ExportEncrypted(ctx context.Context, passphrase string) (EncryptedSnapshot, error)
	MergeEncrypted(ctx context.Context, passphrase string, enc EncryptedSnapshot) (MergeStats, error)
}

type syncService struct {
	txManager  TxManager
	items      repositories.ItemRepository
	folders    repositories.FolderRepository
	extensions repositories.ExtensionRepository
	crypto     CryptoService
}

func NewSyncService(
	txManager TxManager,
	items repositories.ItemRepository,
	folders repositories.FolderRepository,
	extensions repositories.ExtensionRepository,
	crypto CryptoService,
) SyncService {
	return &syncService{
		txManager:  txManager,
		items:      items,
		folders:    folders,
		extensions: extensions,
		crypto:     crypto,
	}
}

func (s *syncService) Export(ctx context.Context) (models.SyncSnapshot, error) {
	var snapshot models.SyncSnapshot
	err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		items, err := s.items.ListAll(ctx, tx)
		if err != nil {
			return err
		}
		folders, err := s.folders.ListAll(ctx, tx)
		if err != nil {
			return err
		}
		rels, err := s.folders.ListAllMembers(ctx, tx)
		if err != nil {
			return err
		}
		exts, err := s.extensions.ListAll(ctx, tx)
		if err != nil {
			return err
		}
		snapshot = models.SyncSnapshot{Items: items, Folders: folders, FolderItems: rels, Extensions: exts}
		return nil
	})
	if err != nil {
		return models.SyncSnapshot{}, newAppError(http.StatusInternalServerError, "导出快照失败", err)
	}
	return snapshot, nil
}

// Merge folds a snapshot into the local store. Existing rows always
// win: items, folders and memberships insert only where the primary key
// is absent, and extension columns fill only locally missing fields.
// The whole merge commits as one transaction and is idempotent.
func (s *syncService) Merge(ctx context.Context, snapshot models.SyncSnapshot) (MergeStats, error) {
	var stats MergeStats
	err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		for i := range snapshot.Items {
			item := snapshot.Items[i]
			if item.ID == "" {
				continue
			}
			if _, err := s.items.GetByID(ctx, tx, item.ID); err == nil {
				continue
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := s.items.InsertIgnore(ctx, tx, &item); err != nil {
				return err
			}
			stats.Items++
		}

		for i := range snapshot.Folders {
			folder := snapshot.Folders[i]
			if folder.ID == "" {
				continue
			}
			if _, err := s.folders.GetByID(ctx, tx, folder.ID); err == nil {
				continue
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := s.folders.InsertIgnore(ctx, tx, &folder); err != nil {
				return err
			}
			stats.Folders++
		}

		for i := range snapshot.FolderItems {
			rel := snapshot.FolderItems[i]
			if rel.FolderID == "" || rel.ItemID == "" {
				continue
			}
			added, err := s.folders.AddMember(ctx, tx, rel.FolderID, rel.ItemID)
			if err != nil {
				return err
			}
			if added {
				stats.FolderItems++
			}
		}

		for i := range snapshot.Extensions {
			changed, err := s.mergeExtension(ctx, tx, snapshot.Extensions[i])
			if err != nil {
				return err
			}
			if changed {
				stats.Extensions++
			}
		}

		return s.folders.RecountAll(ctx, tx)
	})
	if err != nil {
		return MergeStats{}, newAppError(http.StatusInternalServerError, "合并快照失败", err)
	}
	return stats, nil
}

// mergeExtension unions per column: a remote value lands only where the
// local column is NULL. Local OCR text and icons are never overwritten.
func (s *syncService) mergeExtension(ctx context.Context, tx *gorm.DB, incoming models.Extension) (bool, error) {
	if incoming.ItemID == "" {
		return false, nil
	}

	local, err := s.extensions.GetByItemID(ctx, tx, incoming.ItemID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}
		if incoming.OCRText == nil && incoming.IconData == nil {
			return false, nil
		}
		return true, s.extensions.InsertIgnore(ctx, tx, &incoming)
	}

	changed := false
	if local.OCRText == nil && incoming.OCRText != nil {
		if err := s.extensions.UpsertOCRText(ctx, tx, incoming.ItemID, *incoming.OCRText); err != nil {
			return false, err
		}
		changed = true
	}
	if local.IconData == nil && incoming.IconData != nil {
		if err := s.extensions.UpsertIconData(ctx, tx, incoming.ItemID, *incoming.IconData); err != nil {
			return false, err
		}
		changed = true
	}
	return changed, nil
}

func (s *syncService) ExportEncrypted(ctx context.Context, passphrase string) (EncryptedSnapshot, error) {
	if passphrase == "" {
		return EncryptedSnapshot{}, newAppError(http.StatusBadRequest, "口令不能为空", nil)
	}

	snapshot, err := s.Export(ctx)
	if err != nil {
		return EncryptedSnapshot{}, err
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return EncryptedSnapshot{}, newAppError(http.StatusInternalServerError, "序列化快照失败", err)
	}

	salt, err := s.crypto.GenerateSalt()
	if err != nil {
		return EncryptedSnapshot{}, err
	}
	key := s.crypto.DeriveKey(passphrase, salt)
	payload, err := s.crypto.Encrypt(key, data)
	if err != nil {
		return EncryptedSnapshot{}, err
	}

	return EncryptedSnapshot{
		Salt:    base64.StdEncoding.EncodeToString(salt),
		Payload: payload,
	}, nil
}

func (s *syncService) MergeEncrypted(ctx context.Context, passphrase string, enc EncryptedSnapshot) (MergeStats, error) {
	if passphrase == "" {
		return MergeStats{}, newAppError(http.StatusBadRequest, "口令不能为空", nil)
	}

	salt, err := base64.StdEncoding.DecodeString(enc.Salt)
	if err != nil {
		return MergeStats{}, newAppError(http.StatusBadRequest, "盐值格式错误", err)
	}

	key := s.crypto.DeriveKey(passphrase, salt)
	data, err := s.crypto.Decrypt(key, enc.Payload)
	if err != nil {
		return MergeStats{}, err
	}

	var snapshot models.SyncSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return MergeStats{}, newAppError(http.StatusBadRequest, "快照格式错误", err)
	}

	// Item fields may additionally be sealed one by one. Decrypt what
	// the key opens; anything else is stored as received.
	for i := range snapshot.Items {
		snapshot.Items[i].Content = s.decryptOrKeep(key, snapshot.Items[i].Content)
		snapshot.Items[i].Notes = s.decryptOrKeep(key, snapshot.Items[i].Notes)
	}
	return s.Merge(ctx, snapshot)
}

func (s *syncService) decryptOrKeep(key []byte, value string) string {
	if !strings.Contains(value, ":") {
		return value
	}
	plaintext, err := s.crypto.Decrypt(key, value)
	if err != nil {
		return value
	}
	return string(plaintext)
}
