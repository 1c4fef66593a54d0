// Package numbering allocates sequential document numbers for quotes and
// invoices. Numbers are scoped per document kind and per calendar year,
// formatted as YYYY-NNNN with a fixed 4-digit zero-padded sequence so
// lexicographic and numeric ordering agree. Allocation is a pure function
// of the engagement list it is given: it scans the stored numbers of the
// requested kind, takes the highest sequence for the reference year and
// returns max+1 (1 when none exist). It gives no cross-process uniqueness
// guarantee; callers serialize allocation inside their own transaction.
package numbering

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/washandgo/engagement-api/internal/domain"
)

var numberPattern = regexp.MustCompile(`^(\d{4})-(\d{4,})$`)

// NextNumber returns the next unused document number for the kind and the
// calendar year of referenceDate. Records whose stored number does not
// match the year-scoped format (legacy labels included) are ignored.
// Only devis and facture carry numbers; any other kind yields "".
func NextNumber(engagements []domain.Engagement, kind domain.EngagementKind, referenceDate time.Time) string {
	if kind != domain.KindDevis && kind != domain.KindFacture {
		return ""
	}

	year := referenceDate.Year()
	highest := 0
	for i := range engagements {
		number := storedNumber(&engagements[i], kind)
		if number == nil {
			continue
		}
		numberYear, seq, ok := Parse(*number)
		if !ok || numberYear != year {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}

	return Format(year, highest+1)
}

// Format renders a year-scoped document number.
func Format(year, sequence int) string {
	return fmt.Sprintf("%d-%04d", year, sequence)
}

// Parse extracts the year and sequence of a properly formatted number.
func Parse(number string) (year, sequence int, ok bool) {
	m := numberPattern.FindStringSubmatch(strings.TrimSpace(number))
	if m == nil {
		return 0, 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	sequence, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return year, sequence, true
}

// LegacyLabel derives a display label for records that predate proper
// numbering. The alphabetic kind prefix guarantees a legacy label can
// never collide with an allocated YYYY-NNNN number, and it is never
// returned by NextNumber.
func LegacyLabel(id string, kind domain.EngagementKind) string {
	prefix := "SRV"
	switch kind {
	case domain.KindFacture:
		prefix = "FAC"
	case domain.KindDevis:
		prefix = "DEV"
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, id)
	if digits == "" {
		return prefix + "-" + strings.ToUpper(id)
	}
	numeric, err := strconv.Atoi(digits)
	if err != nil {
		// Longer than an int; keep the raw digits.
		return prefix + "-" + digits
	}
	return fmt.Sprintf("%s-%04d", prefix, numeric)
}

// DocumentLabel returns the number to display for an engagement: its
// allocated number when present, otherwise the legacy fallback label.
func DocumentLabel(e *domain.Engagement) string {
	if n := e.DocumentNumber(); n != nil && *n != "" {
		return *n
	}
	return LegacyLabel(e.ID, e.Kind)
}

func storedNumber(e *domain.Engagement, kind domain.EngagementKind) *string {
	switch kind {
	case domain.KindFacture:
		return e.InvoiceNumber
	case domain.KindDevis:
		return e.QuoteNumber
	}
	return nil
}
