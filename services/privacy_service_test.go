package services

import (
	"context"
	"testing"

	"github.com/thu-HZML/SmartPaste-sub000/config"
	"github.com/thu-HZML/SmartPaste-sub000/models"
)

func TestLuhnValid(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{"valid visa", "4000000000000002", true},
		{"invalid checksum", "4000000000000003", false},
		{"valid with spaces", "4000 0000 0000 0002", true},
		{"valid with hyphens", "4000-0000-0000-0002", true},
		{"valid with tabs", "4000\t0000\t0000\t0002", true},
		{"non digit", "4000abcd00000002", false},
		{"empty", "", false},
		{"only separators", " - ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := luhnValid(tt.candidate); got != tt.want {
				t.Fatalf("luhnValid(%q) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestMatchKeywordsNotesOnly(t *testing.T) {
	tests := []struct {
		name string
		item models.ClipboardItem
		want bool
	}{
		{"keyword in notes", models.ClipboardItem{ItemType: models.ItemTypeText, Notes: "this is my password"}, true},
		{"cjk keyword embedded", models.ClipboardItem{ItemType: models.ItemTypeText, Notes: "银行卡密码备份"}, true},
		{"keyword only in content", models.ClipboardItem{ItemType: models.ItemTypeText, Content: "password hunter2", Notes: ""}, false},
		{"word boundary respected", models.ClipboardItem{ItemType: models.ItemTypeText, Notes: "bought a compass"}, false},
		{"case insensitive", models.ClipboardItem{ItemType: models.ItemTypeText, Notes: "GitHub TOKEN here"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchKeywords(tt.item); got != tt.want {
				t.Fatalf("matchKeywords = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchBankCardRequiresLuhn(t *testing.T) {
	valid := models.ClipboardItem{Content: "card: 4000 0000 0000 0002 exp 09/27"}
	if !matchBankCard(valid) {
		t.Fatalf("expected Luhn-valid card to match")
	}

	invalid := models.ClipboardItem{Content: "card: 4000 0000 0000 0003"}
	if matchBankCard(invalid) {
		t.Fatalf("expected Luhn-invalid number to be rejected")
	}
}

func TestMatchBankCardFamilies(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"visa 16", "4000000000000002", true},
		{"visa 19", "4000000000000000006", true},
		{"mastercard 51-55", "5500005555555559", true},
		{"mastercard 2-series", "2345678901234560", true},
		{"amex 15", "378282246310005", true},
		{"diners 14", "30569309025904", true},
		{"discover 16", "6011111111111117", true},
		{"spaced visa", "card 4000 0000 0000 0002 here", true},
		{"plain 16 digits wrong prefix", "1234567812345670", false},
		{"too short", "40000000002", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchBankCard(models.ClipboardItem{Content: tt.content})
			if got != tt.want {
				t.Fatalf("matchBankCard(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestMatchIDAndPhoneNumbers(t *testing.T) {
	if !matchIDNumber(models.ClipboardItem{Content: "身份证 11010519491231002X 登记"}) {
		t.Fatalf("expected 17-digit+X id to match")
	}
	if !matchIDNumber(models.ClipboardItem{Content: "id 110105194912310021"}) {
		t.Fatalf("expected 18-digit id to match")
	}
	if matchIDNumber(models.ClipboardItem{Content: "order 1234567890"}) {
		t.Fatalf("expected short digit run not to match")
	}

	if !matchPhoneNumber(models.ClipboardItem{Content: "call me at 13812345678"}) {
		t.Fatalf("expected mobile number to match")
	}
	if matchPhoneNumber(models.ClipboardItem{Content: "number 12345678901"}) {
		t.Fatalf("expected non-mobile prefix not to match")
	}
}

func TestPrivacyServiceFilterMarksAndUnmarks(t *testing.T) {
	svc, _ := newTestEnv(t)
	ctx := context.Background()

	card, err := svc.Items.Insert(ctx, models.ClipboardItem{ID: "card", ItemType: models.ItemTypeText, Content: "pay 4000000000000002 now", Timestamp: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Items.Insert(ctx, models.ClipboardItem{ID: "plain", ItemType: models.ItemTypeText, Content: "nothing here", Timestamp: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count, err := svc.Privacy.FilterBankCards(ctx, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 match, got %d", count)
	}
	marked, err := svc.Privacy.IsMarked(ctx, card.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !marked {
		t.Fatalf("expected card item marked")
	}

	// marking again stays idempotent
	if _, err := svc.Privacy.FilterBankCards(ctx, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items, err := svc.Privacy.ListMarked(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 marked item, got %d", len(items))
	}

	count, err = svc.Privacy.FilterBankCards(ctx, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 unmarked, got %d", count)
	}
	marked, err = svc.Privacy.IsMarked(ctx, card.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked {
		t.Fatalf("expected mark removed")
	}
}

func TestPrivacyServiceAutoMarkCountsPerDetector(t *testing.T) {
	svc, _ := newTestEnv(t)
	ctx := context.Background()

	// one item tripping two detectors
	if _, err := svc.Items.Insert(ctx, models.ClipboardItem{
		ID:        "both",
		ItemType:  models.ItemTypeText,
		Content:   "card 4000000000000002 phone 13812345678",
		Timestamp: 1,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	total, err := svc.Privacy.AutoMark(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected detector hit total 2, got %d", total)
	}

	items, err := svc.Privacy.ListMarked(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected a single marked item, got %d", len(items))
	}
}

func TestPrivacyServiceCheckAndMarkSingleItem(t *testing.T) {
	svc, _ := newTestEnv(t)
	ctx := context.Background()

	phone, err := svc.Items.Insert(ctx, models.ClipboardItem{ID: "phone", ItemType: models.ItemTypeText, Content: "13812345678", Timestamp: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plain, err := svc.Items.Insert(ctx, models.ClipboardItem{ID: "plain", ItemType: models.ItemTypeText, Content: "hello", Timestamp: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	image, err := svc.Items.Insert(ctx, models.ClipboardItem{ID: "img", ItemType: models.ItemTypeImage, Content: "files/13812345678.png", Timestamp: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	marked, err := svc.Privacy.CheckAndMarkSingleItem(ctx, phone.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !marked {
		t.Fatalf("expected phone item marked")
	}

	marked, err = svc.Privacy.CheckAndMarkSingleItem(ctx, plain.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked {
		t.Fatalf("expected plain item unmarked")
	}

	// detectors see every item type, a phone number in a file name counts
	marked, err = svc.Privacy.CheckAndMarkSingleItem(ctx, image.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !marked {
		t.Fatalf("expected image item with matching content marked")
	}
}

func TestPrivacyServiceDisabledDetectorUnmarksMatches(t *testing.T) {
	svc, _ := newTestEnvWith(t, func(cfg *config.Config) {
		cfg.Privacy.FilterPhoneNumbers = false
	})
	ctx := context.Background()

	phone, err := svc.Items.Insert(ctx, models.ClipboardItem{ID: "p", ItemType: models.ItemTypeText, Content: "13812345678", Timestamp: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Privacy.Mark(ctx, phone.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// a disabled detector removes marks from its matches
	marked, err := svc.Privacy.CheckAndMarkSingleItem(ctx, phone.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked {
		t.Fatalf("expected disabled phone detector to remove the mark")
	}

	if err := svc.Privacy.Mark(ctx, phone.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	total, err := svc.Privacy.AutoMark(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected the phone hit counted, got %d", total)
	}
	marked, err = svc.Privacy.IsMarked(ctx, phone.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked {
		t.Fatalf("expected auto mark to clear the mark while the detector is off")
	}
}
