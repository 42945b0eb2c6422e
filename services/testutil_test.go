package services

import (
	"path/filepath"
	"testing"

	"github.com/thu-HZML/SmartPaste-sub000/config"
	"github.com/thu-HZML/SmartPaste-sub000/database"
	"github.com/thu-HZML/SmartPaste-sub000/repositories"
)

func defaultTestConfig(dir string) *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{BasePath: dir},
		Retention: config.RetentionConfig{
			RetentionDays:   30,
			MaxHistoryItems: 0,
			CleanupInterval: 3600,
		},
		Privacy: config.PrivacyConfig{
			FilterPasswords:    true,
			FilterBankCards:    true,
			FilterIDNumbers:    true,
			FilterPhoneNumbers: true,
		},
		Icon: config.IconConfig{Width: 32, Height: 32},
	}
}

func newTestEnv(t *testing.T) (*Container, *repositories.Container) {
	t.Helper()
	return newTestEnvWith(t, nil)
}

// newTestEnvWith runs services against a throwaway sqlite file so the
// real query semantics (upsert conflicts, joins, subquery deletes) are
// exercised.
func newTestEnvWith(t *testing.T, mutate func(cfg *config.Config)) (*Container, *repositories.Container) {
	t.Helper()

	dir := t.TempDir()
	store, err := database.Open(filepath.Join(dir, "smartpaste.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := defaultTestConfig(dir)
	if mutate != nil {
		mutate(cfg)
	}

	repos := repositories.NewGormRepositories(store, nil).BuildContainer()
	return BuildContainer(&repos, cfg), &repos
}
