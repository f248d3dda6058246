package lot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/harvest/internal/domain/models"
)

func TestGenerate(t *testing.T) {
	date := models.NewDate(2024, time.March, 10)
	cases := []struct {
		name    string
		variety string
		want    string
	}{
		{name: "latin", variety: "Valencia", want: "240310-1-VAL"},
		{name: "short", variety: "Fi", want: "240310-1-FI"},
		{name: "punctuation skipped", variety: "  d'Or blanc", want: "240310-1-DOR"},
		{name: "greek transliterated", variety: "Μέρλιν", want: "240310-1-MER"},
		{name: "digits kept", variety: "N-2 late", want: "240310-1-N2L"},
		{name: "no alphanumerics", variety: "***", want: "240310-1-" + FallbackToken},
		{name: "ampersand dropped", variety: "A&B", want: "240310-1-AB"},
		{name: "leading ampersand dropped", variety: "&Co", want: "240310-1-CO"},
		{name: "at sign dropped", variety: "@Home", want: "240310-1-HOM"},
		{name: "only symbols", variety: "& @", want: "240310-1-" + FallbackToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Generate(date, 1, tc.variety))
		})
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	date := models.NewDate(2023, time.December, 1)
	assert.Equal(t, Generate(date, 12, "Navel"), Generate(date, 12, "Navel"))
	assert.Equal(t, "231201-12-NAV", Generate(date, 12, "Navel"))
}

func TestConflict(t *testing.T) {
	receipts := []models.Receipt{
		{ID: 1, Lot: "240310-1-VAL"},
		{ID: 2, Lot: "240311-1-VAL"},
	}

	id, taken := Conflict("240310-1-VAL", receipts, 0)
	assert.True(t, taken)
	assert.Equal(t, 1, id)

	_, taken = Conflict("240310-1-VAL", receipts, 1)
	assert.False(t, taken, "an entry keeps its own code on edit")

	assert.True(t, IsUnique("240312-1-VAL", receipts, 0))
	assert.False(t, IsUnique("240311-1-VAL", receipts, 1))
}
