package services

import (
	"context"
	"testing"
	"time"

	"github.com/thu-HZML/SmartPaste-sub000/config"
	"github.com/thu-HZML/SmartPaste-sub000/models"
)

func TestRetentionServiceDeleteExpiredKeepsFavorites(t *testing.T) {
	svc, _ := newTestEnvWith(t, func(cfg *config.Config) {
		cfg.Retention.RetentionDays = 7
	})
	ctx := context.Background()

	old := time.Now().UnixMilli() - 8*86400*1000
	for _, it := range []models.ClipboardItem{
		{ID: "old-plain", ItemType: models.ItemTypeText, Content: "a", Timestamp: old},
		{ID: "old-fav", ItemType: models.ItemTypeText, Content: "b", IsFavorite: true, Timestamp: old},
		{ID: "fresh", ItemType: models.ItemTypeText, Content: "c", Timestamp: time.Now().UnixMilli()},
	} {
		if _, err := svc.Items.Insert(ctx, it); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	removed, err := svc.Retention.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 expired row, got %d", removed)
	}

	if got, _ := svc.Items.Get(ctx, "old-plain"); got != nil {
		t.Fatalf("expected expired item gone")
	}
	if got, _ := svc.Items.Get(ctx, "old-fav"); got == nil {
		t.Fatalf("expected favorite to survive expiry")
	}
	if got, _ := svc.Items.Get(ctx, "fresh"); got == nil {
		t.Fatalf("expected fresh item to survive")
	}
}

func TestRetentionServiceMaxCountZeroDisablesEviction(t *testing.T) {
	svc, _ := newTestEnvWith(t, func(cfg *config.Config) {
		cfg.Retention.MaxHistoryItems = 0
	})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Items.InsertText(ctx, "entry"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	removed, err := svc.Retention.EnforceMaxCount(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected eviction disabled, removed %d", removed)
	}

	items, err := svc.Items.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("expected all 5 items kept, got %d", len(items))
	}
}

func TestRetentionServiceEnforceMaxCountEvictsOldestNonFavorites(t *testing.T) {
	svc, _ := newTestEnvWith(t, func(cfg *config.Config) {
		cfg.Retention.MaxHistoryItems = 2
	})
	ctx := context.Background()

	for _, it := range []models.ClipboardItem{
		{ID: "oldest", ItemType: models.ItemTypeText, Content: "1", Timestamp: 100},
		{ID: "old-fav", ItemType: models.ItemTypeText, Content: "2", IsFavorite: true, Timestamp: 200},
		{ID: "mid", ItemType: models.ItemTypeText, Content: "3", Timestamp: 300},
		{ID: "newer", ItemType: models.ItemTypeText, Content: "4", Timestamp: 400},
		{ID: "newest", ItemType: models.ItemTypeText, Content: "5", Timestamp: 500},
	} {
		if _, err := svc.Items.Insert(ctx, it); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	removed, err := svc.Retention.EnforceMaxCount(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 evicted, got %d", removed)
	}

	if got, _ := svc.Items.Get(ctx, "oldest"); got != nil {
		t.Fatalf("expected oldest non-favorite evicted")
	}
	if got, _ := svc.Items.Get(ctx, "mid"); got != nil {
		t.Fatalf("expected second-oldest non-favorite evicted")
	}
	if got, _ := svc.Items.Get(ctx, "old-fav"); got == nil {
		t.Fatalf("expected favorite kept regardless of age")
	}
	if got, _ := svc.Items.Get(ctx, "newest"); got == nil {
		t.Fatalf("expected newest kept")
	}
}

func TestRetentionServiceEvictionRemovesDependentRows(t *testing.T) {
	svc, repos := newTestEnvWith(t, func(cfg *config.Config) {
		cfg.Retention.MaxHistoryItems = 1
	})
	ctx := context.Background()

	if _, err := svc.Items.Insert(ctx, models.ClipboardItem{ID: "victim", ItemType: models.ItemTypeText, Content: "13812345678", Timestamp: 100}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Items.Insert(ctx, models.ClipboardItem{ID: "kept", ItemType: models.ItemTypeText, Content: "fresh", Timestamp: 200}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	folder, err := svc.Folders.Create(ctx, "inbox")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Folders.AddItem(ctx, folder.ID, "victim"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Privacy.Mark(ctx, "victim"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Extensions.SetOCRText(ctx, "victim", "scanned"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	removed, err := svc.Retention.EnforceMaxCount(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 evicted, got %d", removed)
	}

	members, err := repos.Folders.ListAllMembers(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(members) != 0 {
		t.Fatalf("expected no folder memberships left, got %d", len(members))
	}
	refreshed, err := svc.Folders.Get(ctx, folder.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refreshed.NumItems != 0 {
		t.Fatalf("expected folder recount to 0, got %d", refreshed.NumItems)
	}
	marked, err := svc.Privacy.IsMarked(ctx, "victim")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked {
		t.Fatalf("expected privacy mark gone")
	}
	if ext, _ := svc.Extensions.Get(ctx, "victim"); ext != nil {
		t.Fatalf("expected extension row gone")
	}
}

func TestCleanupNotifierNeverBlocks(t *testing.T) {
	n := NewCleanupNotifier()
	for i := 0; i < 10; i++ {
		n.Notify()
	}

	select {
	case <-n.C():
	default:
		t.Fatalf("expected one pending notification")
	}
	select {
	case <-n.C():
		t.Fatalf("expected extra notifications to be dropped")
	default:
	}

	var nilNotifier *CleanupNotifier
	nilNotifier.Notify()
}

func TestRetentionServiceRunCleanupCombinesPolicies(t *testing.T) {
	svc, _ := newTestEnvWith(t, func(cfg *config.Config) {
		cfg.Retention.RetentionDays = 7
		cfg.Retention.MaxHistoryItems = 1
	})
	ctx := context.Background()

	old := time.Now().UnixMilli() - 8*86400*1000
	now := time.Now().UnixMilli()
	for _, it := range []models.ClipboardItem{
		{ID: "expired", ItemType: models.ItemTypeText, Content: "a", Timestamp: old},
		{ID: "excess", ItemType: models.ItemTypeText, Content: "b", Timestamp: now - 1000},
		{ID: "kept", ItemType: models.ItemTypeText, Content: "c", Timestamp: now},
	} {
		if _, err := svc.Items.Insert(ctx, it); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	removed, err := svc.Retention.RunCleanup(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	items, err := svc.Items.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "kept" {
		t.Fatalf("expected only newest kept: %#v", items)
	}
}
