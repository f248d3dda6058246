package lot

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gosimple/slug"

	"github.com/mamadbah2/harvest/internal/domain/models"
)

const (
	codeDateLayout = "060102"
	separator      = "-"
	tokenLength    = 3
	// FallbackToken replaces the variety token when the variety has no alphanumerics.
	FallbackToken = "GEN"
)

// Generate derives the lot code for an entry dated date, from counterpart
// counterpartID, of the given variety. The result is YYMMDD-<id>-<TOKEN>.
func Generate(date models.Date, counterpartID int, variety string) string {
	return date.Format(codeDateLayout) + separator + fmt.Sprint(counterpartID) + separator + varietyToken(variety)
}

// varietyToken strips every rune that is not a letter or digit, transliterates
// the rest to ASCII (Greek and accented letters included) and keeps the first
// three alphanumerics. Symbols are dropped before transliteration so "&" or "@"
// never turn into words.
func varietyToken(variety string) string {
	kept := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, variety)

	var b strings.Builder
	for _, r := range slug.Make(kept) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == tokenLength {
				break
			}
		}
	}
	if b.Len() == 0 {
		return FallbackToken
	}
	return strings.ToUpper(b.String())
}

// Conflict returns the id of another entry in entries that already carries
// code. Entries with excludeID are ignored so an entry may keep its own code
// on edit; pass 0 on create.
func Conflict[E models.Entry](code string, entries []E, excludeID int) (int, bool) {
	for _, entry := range entries {
		if entry.Key() == excludeID {
			continue
		}
		if entry.LotCode() == code {
			return entry.Key(), true
		}
	}
	return 0, false
}

// IsUnique reports whether no entry other than excludeID carries code.
func IsUnique[E models.Entry](code string, entries []E, excludeID int) bool {
	_, taken := Conflict(code, entries, excludeID)
	return !taken
}
