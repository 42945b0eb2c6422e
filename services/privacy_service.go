package services

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"github.com/thu-HZML/SmartPaste-sub000/config"
	"github.com/thu-HZML/SmartPaste-sub000/models"
	"github.com/thu-HZML/SmartPaste-sub000/repositories"
)

type PrivacyService interface {
	Mark(ctx context.Context, itemID string) error
	Unmark(ctx context.Context, itemID string) error
	IsMarked(ctx context.Context, itemID string) (bool, error)
	ListMarked(ctx context.Context) ([]models.ClipboardItem, error)
	ClearAll(ctx context.Context) (int64, error)
	FilterPasswords(ctx context.Context, toAdd bool) (int64, error)
	FilterBankCards(ctx context.Context, toAdd bool) (int64, error)
	FilterIDNumbers(ctx context.Context, toAdd bool) (int64, error)
	FilterPhoneNumbers(ctx context.Context, toAdd bool) (int64, error)
	AutoMark(ctx context.Context) (int64, error)
	CheckAndMarkSingleItem(ctx context.Context, itemID string) (bool, error)
}

var privacyKeywords = []string{
	"password", "密码", "pwd", "pass", "secret", "key",
	"token", "credential", "login", "auth", "authentication",
}

var keywordPatterns = buildKeywordPatterns(privacyKeywords)

// buildKeywordPatterns compiles one pattern per keyword. ASCII keywords
// get word boundaries; \b is meaningless around CJK text, so non-ASCII
// keywords match anywhere.
func buildKeywordPatterns(keywords []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		if isASCII(kw) {
			patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
		} else {
			patterns = append(patterns, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(kw)))
		}
	}
	return patterns
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// bankCardPattern covers the major PAN families (13-19 digits with
// optional space/hyphen separators): Visa 13/16/19, Mastercard 51-55
// and 2-series, Amex, and the Discover/Diners/JCB ranges.
var bankCardPattern = regexp.MustCompile(
	`\b(?:` +
		`4\d{3}[\s-]?\d{4}[\s-]?\d{4}(?:[\s-]?\d{4}(?:[\s-]?\d{3})?)?` +
		`|(?:5[1-5]|222[1-9]|22[3-9]|2[3-6]|27[0-2])\d{2}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}` +
		`|3[47]\d{2}[\s-]?\d{6}[\s-]?\d{5}` +
		`|(?:3(?:0[0-5]|[689])|6(?:011|5\d{2}|4[4-9]\d))\d{10,15}` +
		`)\b`,
)

var idNumberPattern = regexp.MustCompile(`\b\d{15}\b|\b\d{18}\b|\b\d{17}X\b`)

var phoneNumberPattern = regexp.MustCompile(`\b1[3-9]\d{9}\b`)

// luhnValid reports whether the candidate passes the Luhn checksum.
// Whitespace and hyphens are stripped first; any other non-digit fails.
func luhnValid(candidate string) bool {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, candidate)
	if cleaned == "" {
		return false
	}

	sum := 0
	double := false
	for i := len(cleaned) - 1; i >= 0; i-- {
		c := cleaned[i]
		if c < '0' || c > '9' {
			return false
		}
		digit := int(c - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	return sum%10 == 0
}

// matchKeywords inspects the notes field only; keyword hits in pasted
// content would flag far too much ordinary text.
func matchKeywords(item models.ClipboardItem) bool {
	if item.Notes == "" {
		return false
	}
	for _, p := range keywordPatterns {
		if p.MatchString(item.Notes) {
			return true
		}
	}
	return false
}

func matchBankCard(item models.ClipboardItem) bool {
	for _, candidate := range bankCardPattern.FindAllString(item.Content, -1) {
		if luhnValid(candidate) {
			return true
		}
	}
	return false
}

func matchIDNumber(item models.ClipboardItem) bool {
	return idNumberPattern.MatchString(item.Content)
}

func matchPhoneNumber(item models.ClipboardItem) bool {
	return phoneNumberPattern.MatchString(item.Content)
}

type privacyService struct {
	privacy repositories.PrivacyRepository
	items   repositories.ItemRepository
	cfg     config.PrivacyConfig
}

func NewPrivacyService(privacy repositories.PrivacyRepository, items repositories.ItemRepository, cfg config.PrivacyConfig) PrivacyService {
	return &privacyService{privacy: privacy, items: items, cfg: cfg}
}

func (s *privacyService) Mark(ctx context.Context, itemID string) error {
	if err := s.privacy.Mark(ctx, nil, itemID); err != nil {
		return newAppError(http.StatusInternalServerError, "标记隐私记录失败", err)
	}
	return nil
}

func (s *privacyService) Unmark(ctx context.Context, itemID string) error {
	if err := s.privacy.Unmark(ctx, nil, itemID); err != nil {
		return newAppError(http.StatusInternalServerError, "取消隐私标记失败", err)
	}
	return nil
}

func (s *privacyService) IsMarked(ctx context.Context, itemID string) (bool, error) {
	marked, err := s.privacy.IsMarked(ctx, nil, itemID)
	if err != nil {
		return false, newAppError(http.StatusInternalServerError, "查询隐私标记失败", err)
	}
	return marked, nil
}

func (s *privacyService) ListMarked(ctx context.Context) ([]models.ClipboardItem, error) {
	items, err := s.privacy.ListMarkedItems(ctx, nil)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "获取隐私记录失败", err)
	}
	return items, nil
}

func (s *privacyService) ClearAll(ctx context.Context) (int64, error) {
	rows, err := s.privacy.ClearAll(ctx, nil)
	if err != nil {
		return 0, newAppError(http.StatusInternalServerError, "清空隐私标记失败", err)
	}
	return rows, nil
}

// runFilter applies one detector to every text item. toAdd marks the
// matches; otherwise their marks are removed. Returns how many items
// matched.
func (s *privacyService) runFilter(ctx context.Context, toAdd bool, match func(models.ClipboardItem) bool) (int64, error) {
	items, err := s.items.ListByTypes(ctx, nil, []string{models.ItemTypeText})
	if err != nil {
		return 0, newAppError(http.StatusInternalServerError, "获取剪贴板记录失败", err)
	}

	var count int64
	for _, item := range items {
		if !match(item) {
			continue
		}
		if toAdd {
			err = s.privacy.Mark(ctx, nil, item.ID)
		} else {
			err = s.privacy.Unmark(ctx, nil, item.ID)
		}
		if err != nil {
			return 0, newAppError(http.StatusInternalServerError, "更新隐私标记失败", err)
		}
		count++
	}
	return count, nil
}

func (s *privacyService) FilterPasswords(ctx context.Context, toAdd bool) (int64, error) {
	return s.runFilter(ctx, toAdd, matchKeywords)
}

func (s *privacyService) FilterBankCards(ctx context.Context, toAdd bool) (int64, error) {
	return s.runFilter(ctx, toAdd, matchBankCard)
}

func (s *privacyService) FilterIDNumbers(ctx context.Context, toAdd bool) (int64, error) {
	return s.runFilter(ctx, toAdd, matchIDNumber)
}

func (s *privacyService) FilterPhoneNumbers(ctx context.Context, toAdd bool) (int64, error) {
	return s.runFilter(ctx, toAdd, matchPhoneNumber)
}

// AutoMark runs all four detectors, each flag choosing whether its
// matches get marked or unmarked, and sums the match counts. An item
// matching two detectors contributes twice; the total reflects
// detector hits, not distinct items.
func (s *privacyService) AutoMark(ctx context.Context) (int64, error) {
	var total int64

	n, err := s.FilterPasswords(ctx, s.cfg.FilterPasswords)
	if err != nil {
		return 0, err
	}
	total += n

	n, err = s.FilterBankCards(ctx, s.cfg.FilterBankCards)
	if err != nil {
		return 0, err
	}
	total += n

	n, err = s.FilterIDNumbers(ctx, s.cfg.FilterIDNumbers)
	if err != nil {
		return 0, err
	}
	total += n

	n, err = s.FilterPhoneNumbers(ctx, s.cfg.FilterPhoneNumbers)
	if err != nil {
		return 0, err
	}
	total += n

	return total, nil
}

// CheckAndMarkSingleItem applies each detector's flag action to one
// item: a match marks it when the flag is on and unmarks it when the
// flag is off; a non-match leaves the existing state alone. Returns
// the final marked status.
func (s *privacyService) CheckAndMarkSingleItem(ctx context.Context, itemID string) (bool, error) {
	item, err := s.items.GetByID(ctx, nil, itemID)
	if err != nil {
		return false, newAppError(http.StatusNotFound, "记录不存在", err)
	}

	checks := []struct {
		toAdd bool
		match func(models.ClipboardItem) bool
	}{
		{s.cfg.FilterPasswords, matchKeywords},
		{s.cfg.FilterBankCards, matchBankCard},
		{s.cfg.FilterIDNumbers, matchIDNumber},
		{s.cfg.FilterPhoneNumbers, matchPhoneNumber},
	}
	for _, check := range checks {
		if !check.match(item) {
			continue
		}
		if check.toAdd {
			err = s.Mark(ctx, itemID)
		} else {
			err = s.Unmark(ctx, itemID)
		}
		if err != nil {
			return false, err
		}
	}

	return s.IsMarked(ctx, itemID)
}
