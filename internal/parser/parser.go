// Package parser decodes YAML record files into analytics records.
package parser

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/starford/bantay/internal/models"
)

// idNamespace scopes ids derived from file paths.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://bantay.local/records"))

// Document is the on-disk shape of one record file.
type Document struct {
	ID        string             `yaml:"id,omitempty"`
	Kind      models.Kind        `yaml:"kind"`
	CreatedAt time.Time          `yaml:"created_at"`
	Category  string             `yaml:"category,omitempty"`
	Status    string             `yaml:"status,omitempty"`
	Flags     models.StatusFlags `yaml:"flags,omitempty"`
	Subject   Subject            `yaml:"subject"`
}

// Subject is the snapshot block of a record file.
type Subject struct {
	FullName   string `yaml:"full_name"`
	Zone       string `yaml:"zone,omitempty"`
	Age        *int   `yaml:"age,omitempty"`
	Gender     string `yaml:"gender,omitempty"`
	Employment string `yaml:"employment,omitempty"`
	PWD        bool   `yaml:"pwd,omitempty"`
	FourPs     bool   `yaml:"four_ps,omitempty"`
	SoloParent bool   `yaml:"solo_parent,omitempty"`
}

// Validate implements validation.Validatable.
func (d Document) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Kind, validation.Required, validation.In(models.KindRequest, models.KindCase)),
		validation.Field(&d.CreatedAt, validation.Required),
		validation.Field(&d.Subject),
	)
}

// Validate implements validation.Validatable.
func (s Subject) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Age, validation.Min(0), validation.Max(150)),
	)
}

// Parse decodes a record file. path is the file's location relative to the
// records root; it supplies the kind when the document omits one
// ("requests/..." or "cases/...") and seeds the id when none is stored.
func Parse(relPath string, data []byte) (models.Record, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return models.Record{}, fmt.Errorf("parser: %s: decode: %w", relPath, err)
	}

	if doc.Kind == "" {
		doc.Kind = kindFromPath(relPath)
	}
	doc.Kind = models.Kind(strings.ToLower(strings.TrimSpace(string(doc.Kind))))
	if err := doc.Validate(); err != nil {
		return models.Record{}, fmt.Errorf("parser: %s: %w", relPath, err)
	}

	id := strings.TrimSpace(doc.ID)
	if id == "" {
		id = PathID(relPath)
	}

	return models.Record{
		ID:        id,
		Kind:      doc.Kind,
		CreatedAt: doc.CreatedAt,
		Category:  strings.TrimSpace(doc.Category),
		Status:    models.ResolveStatus(doc.Kind, doc.Status, doc.Flags),
		Subject: models.Subject{
			FullName:   strings.TrimSpace(doc.Subject.FullName),
			Zone:       strings.TrimSpace(doc.Subject.Zone),
			Age:        doc.Subject.Age,
			Gender:     strings.TrimSpace(doc.Subject.Gender),
			Employment: strings.TrimSpace(doc.Subject.Employment),
			PWD:        doc.Subject.PWD,
			FourPs:     doc.Subject.FourPs,
			SoloParent: doc.Subject.SoloParent,
		},
	}, nil
}

// Encode renders r as a record file. The effective status is written as an
// explicit status, never as flags.
func Encode(r models.Record) ([]byte, error) {
	doc := Document{
		ID:        r.ID,
		Kind:      r.Kind,
		CreatedAt: r.CreatedAt,
		Category:  r.Category,
		Status:    string(r.Status),
		Subject: Subject{
			FullName:   r.Subject.FullName,
			Zone:       r.Subject.Zone,
			Age:        r.Subject.Age,
			Gender:     r.Subject.Gender,
			Employment: r.Subject.Employment,
			PWD:        r.Subject.PWD,
			FourPs:     r.Subject.FourPs,
			SoloParent: r.Subject.SoloParent,
		},
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("parser: encode %s: %w", r.ID, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("parser: encode %s: %w", r.ID, err)
	}
	return buf.Bytes(), nil
}

// PathID derives a stable record id from a relative file path.
func PathID(relPath string) string {
	return uuid.NewSHA1(idNamespace, []byte(path.Clean(relPath))).String()
}

func kindFromPath(relPath string) models.Kind {
	top, _, _ := strings.Cut(path.Clean(relPath), "/")
	switch strings.ToLower(top) {
	case "requests", "request":
		return models.KindRequest
	case "cases", "case", "blotter":
		return models.KindCase
	}
	return ""
}
