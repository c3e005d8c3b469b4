package report

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"sindbad/internal/core"
)

const whatsAppBase = "https://wa.me/"

// NormalizePhone strips everything but digits and adds the Egyptian country
// code: a leading 0 becomes 20, any other number not starting with 2 gets a 2.
func NormalizePhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(digits, "0") {
		digits = "2" + digits
	}
	if !strings.HasPrefix(digits, "2") {
		digits = "2" + digits
	}
	return digits
}

// WhatsAppLink builds a wa.me link that opens a chat with phone and text pre-filled.
func WhatsAppLink(phone, text string) (string, error) {
	n := NormalizePhone(phone)
	if n == "" {
		return "", fmt.Errorf("phone %q: %w", phone, core.ErrEmptyField)
	}
	return whatsAppBase + n + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20"), nil
}

// VisaShareText is the message body sent along with a visa.
func VisaShareText(v core.Visa, c core.Customer) string {
	var sb strings.Builder
	sb.WriteString("Visa details\n")
	fmt.Fprintf(&sb, "Customer: %s\n", c.FullName)
	fmt.Fprintf(&sb, "Visa number: %s\n", v.VisaNumber)
	fmt.Fprintf(&sb, "Route: from %s to %s\n", v.FromLocation, v.ToLocation)
	fmt.Fprintf(&sb, "Departure date: %s", v.DepartureDate)
	return sb.String()
}

// DailySummaryText is the plain text summary posted after a daily export.
func DailySummaryText(r DailyReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Daily report %s\n", r.Date)
	fmt.Fprintf(&sb, "Income: %s\n", r.DailyIncome)
	fmt.Fprintf(&sb, "Expenses: %s\n", r.DailyExpenses)
	fmt.Fprintf(&sb, "Profit: %s\n", r.DailyProfit)
	fmt.Fprintf(&sb, "Bookings: %d, expenses: %d\n", len(r.Bookings), len(r.Expenses))
	fmt.Fprintf(&sb, "Receivables: %s, payables: %s", r.Debts.Receivables, r.Debts.Payables)
	return sb.String()
}
