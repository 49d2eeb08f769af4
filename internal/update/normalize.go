package update

import (
	"strings"
	"time"
)

// SAPDateLayout is the dd.mm.yyyy format SAP date fields expect.
const SAPDateLayout = "02.01.2006"

// Accepted input layouts, tried in order. Day-first forms come before the
// ISO ones so that locale-ambiguous strings resolve with day-first
// precedence.
var dateLayouts = []string{
	"02/01/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// NormalizeDate derives the canonical dd.mm.yyyy string from a raw input
// cell. Strings already containing a literal dot separator pass through
// untouched; everything else is parsed day-first and reformatted. Input
// that cannot be parsed at all also passes through, so the write/verify
// step fails loudly against SAP instead of silently mangling the value.
//
// The output is deterministic: equal inputs always produce byte-identical
// strings, which the idempotence check depends on.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.Contains(s, ".") {
		return s
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(SAPDateLayout)
		}
	}
	return s
}
