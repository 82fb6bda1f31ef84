// Package models defines the domain types for Bantay.
package models

import "time"

// Kind identifies which office ledger a record belongs to.
type Kind string

// Record kinds.
const (
	KindRequest Kind = "request"
	KindCase    Kind = "case"
)

// Kinds lists every record kind in display order.
var Kinds = []Kind{KindRequest, KindCase}

// Valid reports whether k is a known record kind.
func (k Kind) Valid() bool {
	return k == KindRequest || k == KindCase
}

// Record is a read-only analytics view of a request or case filing.
// Status is the effective status, resolved once when the record is ingested.
type Record struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	Category  string    `json:"category"`
	Status    Status    `json:"status"`
	Subject   Subject   `json:"subject"`
}

// Subject is a snapshot of the person a record was filed for or against.
// It is captured when the record is created and never refreshed from the
// resident registry, so later edits to the resident do not move history.
type Subject struct {
	FullName   string `json:"full_name"`
	Zone       string `json:"zone"`
	Age        *int   `json:"age,omitempty"`
	Gender     string `json:"gender"`
	Employment string `json:"employment"`
	PWD        bool   `json:"pwd"`
	FourPs     bool   `json:"four_ps"`
	SoloParent bool   `json:"solo_parent"`
}

// RecordMetadata is a lightweight description of a record file on disk.
type RecordMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
