package service

import (
	"strings"
	"time"
)

var opTypeShortcodes = map[string]string{
	"discharge":   "DIS",
	"loading":     "LOA",
	"bunkering":   "BUN",
	"maintenance": "MNT",
}

// OperationID builds a {VESSEL_SHORTCODE}-{TYPE_SHORTCODE}-{TIMESTAMP}
// identifier, e.g. "MAE-DIS-20250114083000".
func OperationID(vesselName, operationType string, now time.Time) string {
	return nameShortcode(vesselName) + "-" + typeShortcode(operationType) + "-" + now.UTC().Format("20060102150405")
}

// LedgerID builds an identifier for an assignment ledger entry, prefixed
// OA (user/operation assignment) or EA (equipment assignment).
func LedgerID(kind, assigneeID string, now time.Time) string {
	prefix := "OA"
	if kind == "equipment" {
		prefix = "EA"
	}
	return prefix + "-" + nameShortcode(assigneeID) + "-" + now.UTC().Format("20060102150405")
}

// VesselID builds an identifier for a newly registered vessel.
func VesselID(name string, now time.Time) string {
	return nameShortcode(name) + "-VSL-" + now.UTC().Format("20060102150405")
}

// TeamID builds an identifier for a newly registered stevedore team.
func TeamID(name string, now time.Time) string {
	return nameShortcode(name) + "-STV-" + now.UTC().Format("20060102150405")
}

// nameShortcode takes the first three alphabetic characters of the name,
// uppercased. Names with fewer than three letters fall back to "TRM".
func nameShortcode(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
			if b.Len() == 3 {
				break
			}
		}
	}
	if b.Len() < 3 {
		return "TRM"
	}
	return b.String()
}

func typeShortcode(operationType string) string {
	if code, ok := opTypeShortcodes[operationType]; ok {
		return code
	}
	code := strings.ToUpper(operationType)
	if len(code) > 3 {
		code = code[:3]
	}
	return code
}
