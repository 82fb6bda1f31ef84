package models

import "strings"

// Status is the single effective lifecycle state of a record.
type Status string

// Request statuses.
const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// Case statuses. Pending is shared with requests.
const (
	StatusOngoing  Status = "ongoing"
	StatusSettled  Status = "settled"
	StatusEndorsed Status = "endorsed"
)

// StatusUnknown is assigned when a stored status is not part of the kind's set.
const StatusUnknown Status = "unknown"

var statusesByKind = map[Kind][]Status{
	KindRequest: {StatusPending, StatusVerified, StatusApproved, StatusDeclined},
	KindCase:    {StatusPending, StatusOngoing, StatusSettled, StatusEndorsed},
}

// Statuses returns the closed status set for kind in display order.
func Statuses(kind Kind) []Status {
	return statusesByKind[kind]
}

// StatusFlags mirrors the independent decline/approve/verify toggles that the
// request desk records.
type StatusFlags struct {
	Declined bool `yaml:"declined" json:"declined"`
	Approved bool `yaml:"approved" json:"approved"`
	Verified bool `yaml:"verified" json:"verified"`
}

// Any reports whether at least one flag is set.
func (f StatusFlags) Any() bool {
	return f.Declined || f.Approved || f.Verified
}

// Resolve collapses the flags by priority: decline > approve > verify > pending.
func (f StatusFlags) Resolve() Status {
	switch {
	case f.Declined:
		return StatusDeclined
	case f.Approved:
		return StatusApproved
	case f.Verified:
		return StatusVerified
	default:
		return StatusPending
	}
}

// NormalizeStatus folds a status spelling to its stored form, so
// "On-Going" and "ongoing" compare equal.
func NormalizeStatus(v string) Status {
	return Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(v)), "-", ""))
}

// ValidStatus reports whether s can appear on a stored record of kind.
// StatusUnknown counts, since unrecognised statuses resolve to it.
func ValidStatus(kind Kind, s Status) bool {
	if s == StatusUnknown {
		return true
	}
	for _, known := range statusesByKind[kind] {
		if s == known {
			return true
		}
	}
	return false
}

// ResolveStatus returns the effective status for a record of kind.
// Set flags always win over an explicit status string; a blank explicit
// status means pending. Unrecognised values resolve to StatusUnknown.
func ResolveStatus(kind Kind, explicit string, flags StatusFlags) Status {
	if kind == KindRequest && flags.Any() {
		return flags.Resolve()
	}
	s := NormalizeStatus(explicit)
	if s == "" {
		return StatusPending
	}
	for _, known := range statusesByKind[kind] {
		if s == known {
			return s
		}
	}
	return StatusUnknown
}
