package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sindbad/internal/core"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"01012345678":      "201012345678",
		"+20 101 234 5678": "201012345678",
		"1012345678":       "21012345678",
		"201012345678":     "201012345678",
		"(010) 1234-5678":  "201012345678",
		"abc":              "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}

func TestWhatsAppLink(t *testing.T) {
	link, err := WhatsAppLink("01012345678", "Visa V-1 & more")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/201012345678?text=Visa%20V-1%20%26%20more", link)

	_, err = WhatsAppLink("---", "x")
	assert.ErrorIs(t, err, core.ErrEmptyField)
}

func TestVisaShareText(t *testing.T) {
	v := core.Visa{VisaNumber: "V-77", FromLocation: "Cairo", ToLocation: "Makkah", DepartureDate: core.NewDate(2025, 4, 1)}
	c := core.Customer{FullName: "Ahmed Ali"}
	text := VisaShareText(v, c)
	assert.Contains(t, text, "Ahmed Ali")
	assert.Contains(t, text, "V-77")
	assert.Contains(t, text, "from Cairo to Makkah")
	assert.Contains(t, text, "2025-04-01")
}
