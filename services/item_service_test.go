package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/thu-HZML/SmartPaste-sub000/models"
	"github.com/thu-HZML/SmartPaste-sub000/repositories"
)

func TestItemServiceInsertTextSetsDefaultsAndLatest(t *testing.T) {
	svc, _ := newTestEnv(t)
	ctx := context.Background()

	item, err := svc.Items.InsertText(ctx, "hello clipboard")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.ID == "" {
		t.Fatalf("expected generated id")
	}
	if item.Timestamp == 0 {
		t.Fatalf("expected generated timestamp")
	}
	if item.Size == nil || *item.Size != int64(len("hello clipboard")) {
		t.Fatalf("unexpected size: %+v", item.Size)
	}

	latest, err := svc.Items.Latest(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest == nil || latest.ID != item.ID {
		t.Fatalf("expected latest to be the inserted item, got %+v", latest)
	}
}

func TestItemServiceInsertIsIdempotentOnID(t *testing.T) {
	svc, _ := newTestEnv(t)
	ctx := context.Background()

	first, err := svc.Items.Insert(ctx, models.ClipboardItem{ID: "dup", ItemType: models.ItemTypeText, Content: "v1", Timestamp: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = svc.Items.Insert(ctx, models.ClipboardItem{ID: "dup", ItemType: models.ItemTypeText, Content: "v2", Timestamp: 200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.Items.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Content != "v2" {
		t.Fatalf("expected last write to win, got %q", got.Content)
	}

	items, err := svc.Items.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestItemServiceGetMissingReturnsNil(t *testing.T) {
	svc, _ := newTestEnv(t)

	item, err := svc.Items.Get(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil for missing item, got %+v", item)
	}
}

func TestItemServiceFilterByTypeWidensFileAndFolder(t *testing.T) {
	svc, _ := newTestEnv(t)
	ctx := context.Background()

	seed := []models.ClipboardItem{
		{ID: "t1", ItemType: models.ItemTypeText, Content: "note", Timestamp: 1},
		{ID: "f1", ItemType: models.ItemTypeFile, Content: "files/a.pdf", Timestamp: 2},
		{ID: "d1", ItemType: models.ItemTypeFolder, Content: "files/docs", Timestamp: 3},
	}
	for _, it := range seed {
		if _, err := svc.Items.Insert(ctx, it); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := svc.Items.FilterByType(ctx, models.ItemTypeFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected file+folder rows, got %d", len(got))
	}

	got, err = svc.Items.FilterByType(ctx, models.ItemTypeText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("unexpected text filter result: %#v", got)
	}
}

func TestItemServiceDeleteCascades(t *testing.T) {
	svc, _ := newTestEnv(t)
	ctx := context.Background()

	item, err := svc.Items.Insert(ctx, models.ClipboardItem{ID: "victim", ItemType: models.ItemTypeText, Content: "x", Timestamp: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	folder, err := svc.Folders.Create(ctx, "inbox")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Folders.AddItem(ctx, folder.ID, item.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Privacy.Mark(ctx, item.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Extensions.SetOCRText(ctx, item.ID, "scanned"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := svc.Items.Delete(ctx, item.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 deleted row, got %d", rows)
	}

	if got, _ := svc.Items.Get(ctx, item.ID); got != nil {
		t.Fatalf("expected item gone")
	}
	marked, err := svc.Privacy.IsMarked(ctx, item.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked {
		t.Fatalf("expected privacy mark gone")
	}
	if ext, _ := svc.Extensions.Get(ctx, item.ID); ext != nil {
		t.Fatalf("expected extension gone")
	}
	refreshed, err := svc.Folders.Get(ctx, folder.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refreshed.NumItems != 0 {
		t.Fatalf("expected folder recount to 0, got %d", refreshed.NumItems)
	}
}

func TestItemServiceToggleFavorite(t *testing.T) {
	svc, _ := newTestEnv(t)
	ctx := context.Background()

	item, err := svc.Items.Insert(ctx, models.ClipboardItem{ID: "fav", ItemType: models.ItemTypeText, Content: "x", Timestamp: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status, err := svc.Items.ToggleFavorite(ctx, item.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != "favorited" {
		t.Fatalf("expected favorited, got %s", status)
	}

	count, err := svc.Items.FavoriteCount(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected favorite count 1, got %d", count)
	}

	status, err = svc.Items.ToggleFavorite(ctx, item.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != "unfavorited" {
		t.Fatalf("expected unfavorited, got %s", status)
	}

	if _, err := svc.Items.ToggleFavorite(ctx, "missing"); err == nil {
		t.Fatalf("expected error for missing item")
	} else if appErr, ok := err.(*AppError); !ok || appErr.HTTPCode != http.StatusNotFound {
		t.Fatalf("expected HTTP 404 AppError, got %v", err)
	}
}

func TestItemServiceTopMovesItemFirst(t *testing.T) {
	svc, _ := newTestEnv(t)
	ctx := context.Background()

	for _, it := range []models.ClipboardItem{
		{ID: "old", ItemType: models.ItemTypeText, Content: "a", Timestamp: 100},
		{ID: "new", ItemType: models.ItemTypeText, Content: "b", Timestamp: 200},
	} {
		if _, err := svc.Items.Insert(ctx, it); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if _, err := svc.Items.Top(ctx, "old"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, err := svc.Items.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].ID != "old" {
		t.Fatalf("expected topped item first, got %s", items[0].ID)
	}
}

func TestItemServiceSearch(t *testing.T) {
	svc, _ := newTestEnv(t)
	ctx := context.Background()

	seed := []models.ClipboardItem{
		{ID: "c1", ItemType: models.ItemTypeText, Content: "meeting notes for tuesday", Timestamp: 100},
		{ID: "c2", ItemType: models.ItemTypeText, Content: "unrelated", Notes: "tuesday reminder", Timestamp: 200},
		{ID: "c3", ItemType: models.ItemTypeImage, Content: "files/shot.png", Timestamp: 300},
	}
	for _, it := range seed {
		if _, err := svc.Items.Insert(ctx, it); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := svc.Extensions.SetOCRText(ctx, "c3", "tuesday agenda screenshot"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Privacy.Mark(ctx, "c2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.Items.Search(ctx, repositories.SearchInput{Query: "tuesday"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected content/notes/ocr hits, got %d", len(got))
	}
	if got[0].ID != "c3" {
		t.Fatalf("expected newest first, got %s", got[0].ID)
	}

	got, err = svc.Items.Search(ctx, repositories.SearchInput{Query: "tuesday", Kind: "private"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c2" {
		t.Fatalf("unexpected private search result: %#v", got)
	}

	start, end := int64(150), int64(250)
	got, err = svc.Items.Search(ctx, repositories.SearchInput{Query: "tuesday", StartTS: &start, EndTS: &end})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c2" {
		t.Fatalf("unexpected ranged search result: %#v", got)
	}
}

func TestItemServiceClearKeepFavorites(t *testing.T) {
	svc, _ := newTestEnv(t)
	ctx := context.Background()

	for _, it := range []models.ClipboardItem{
		{ID: "k1", ItemType: models.ItemTypeText, Content: "keep", IsFavorite: true, Timestamp: 1},
		{ID: "g1", ItemType: models.ItemTypeText, Content: "gone", Timestamp: 2},
		{ID: "g2", ItemType: models.ItemTypeImage, Content: "files/x.png", Timestamp: 3},
	} {
		if _, err := svc.Items.Insert(ctx, it); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	rows, err := svc.Items.Clear(ctx, "", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 2 {
		t.Fatalf("expected 2 cleared, got %d", rows)
	}

	items, err := svc.Items.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "k1" {
		t.Fatalf("expected only favorite kept: %#v", items)
	}
}

func TestItemServiceClearRemovesDependentRows(t *testing.T) {
	svc, repos := newTestEnv(t)
	ctx := context.Background()

	if _, err := svc.Items.Insert(ctx, models.ClipboardItem{ID: "g1", ItemType: models.ItemTypeText, Content: "gone", Timestamp: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	folder, err := svc.Folders.Create(ctx, "inbox")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Folders.AddItem(ctx, folder.ID, "g1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Privacy.Mark(ctx, "g1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Extensions.SetOCRText(ctx, "g1", "scanned"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := svc.Items.Clear(ctx, "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 cleared, got %d", rows)
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
	marked, err := svc.Privacy.IsMarked(ctx, "g1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked {
		t.Fatalf("expected privacy mark gone")
	}
	if ext, _ := svc.Extensions.Get(ctx, "g1"); ext != nil {
		t.Fatalf("expected extension row gone")
	}
}

func TestItemServiceRewritePathPrefix(t *testing.T) {
	svc, _ := newTestEnv(t)
	ctx := context.Background()

	for _, it := range []models.ClipboardItem{
		{ID: "abs", ItemType: models.ItemTypeFile, Content: "/old/base/files/a.pdf", Timestamp: 1},
		{ID: "rel", ItemType: models.ItemTypeImage, Content: "files/b.png", Timestamp: 2},
		{ID: "txt", ItemType: models.ItemTypeText, Content: "/old/base/files/not-a-path", Timestamp: 3},
	} {
		if _, err := svc.Items.Insert(ctx, it); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	count, err := svc.Items.RewritePathPrefix(ctx, "/old/base", "/new/base")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 rewritten row, got %d", count)
	}

	abs, err := svc.Items.Get(ctx, "abs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if abs.Content != "/new/base/files/a.pdf" {
		t.Fatalf("unexpected rewritten content: %s", abs.Content)
	}

	rel, err := svc.Items.Get(ctx, "rel")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rel.Content != "files/b.png" {
		t.Fatalf("relative path should be untouched, got %s", rel.Content)
	}

	txt, err := svc.Items.Get(ctx, "txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txt.Content != "/old/base/files/not-a-path" {
		t.Fatalf("text content should be untouched, got %s", txt.Content)
	}
}

func TestItemServiceUpdateContentNotFound(t *testing.T) {
	svc, _ := newTestEnv(t)

	_, err := svc.Items.UpdateContent(context.Background(), "missing", "new")
	if err == nil {
		t.Fatalf("expected error")
	}
	appErr, ok := err.(*AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.HTTPCode != http.StatusNotFound {
		t.Fatalf("expected HTTP 404, got %d", appErr.HTTPCode)
	}
}
