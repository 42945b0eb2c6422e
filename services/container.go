package services

import (
	"github.com/thu-HZML/SmartPaste-sub000/config"
	"github.com/thu-HZML/SmartPaste-sub000/repositories"
)

type Container struct {
	Items      ItemService
	Folders    FolderService
	Extensions ExtensionService
	Privacy    PrivacyService
	Retention  RetentionService
	Sync       SyncService
	Icons      IconService
	Crypto     CryptoService
}

func BuildContainer(repos *repositories.Container, cfg *config.Config) *Container {
	notifier := NewCleanupNotifier()
	crypto := NewCryptoService()

	return &Container{
		Items: NewItemService(
			repos.TxManager, repos.Items, repos.Folders, repos.Extensions,
			repos.Privacy, repos.LatestItem, notifier, cfg.Storage,
		),
		Folders:    NewFolderService(repos.TxManager, repos.Folders, repos.Items),
		Extensions: NewExtensionService(repos.Extensions, repos.Items),
		Privacy:    NewPrivacyService(repos.Privacy, repos.Items, cfg.Privacy),
		Retention:  NewRetentionService(repos.TxManager, repos.Items, repos.Folders, notifier, cfg.Retention),
		Sync:       NewSyncService(repos.TxManager, repos.Items, repos.Folders, repos.Extensions, crypto),
		Icons:      NewIconService(repos.Items, repos.Extensions, cfg.Storage, cfg.Icon),
		Crypto:     crypto,
	}
}
