package models

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Unknown labels missing or unrecognised categorical values.
const Unknown = "Unknown"

// Zones are the seven purok subdivisions of the barangay.
var Zones = []string{
	"Purok 1", "Purok 2", "Purok 3", "Purok 4", "Purok 5", "Purok 6", "Purok 7",
}

// RequestCategories are the document types issued by the request desk.
var RequestCategories = []string{
	"Barangay Clearance",
	"Certificate of Residency",
	"Certificate of Indigency",
	"Barangay ID",
	"Business Clearance",
	"First Time Job Seeker",
}

// CaseCategories are the natures of blotter cases.
var CaseCategories = []string{
	"Physical Injury",
	"Theft",
	"Property Dispute",
	"Noise Complaint",
	"Domestic Dispute",
	"Unpaid Debt",
}

// Categories returns the known category vocabulary for kind.
func Categories(kind Kind) []string {
	switch kind {
	case KindRequest:
		return RequestCategories
	case KindCase:
		return CaseCategories
	default:
		return nil
	}
}

// AgeCutoff is the dashboard's open-ended age bracket (24 and above).
const AgeCutoff = 24

// Capitalize trims s, upper-cases its first letter and lower-cases the rest,
// so historical values like "MALE", "male" and " Male" group together.
// Casers are stateful, so each call builds its own.
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(s[:size]) + cases.Lower(language.Und).String(s[size:])
}
