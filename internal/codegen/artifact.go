package codegen

import (
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/srg/attdb/internal/attdb"
	"github.com/srg/attdb/internal/gatt"
	"gopkg.in/yaml.v3"
)

// Artifact is the serializable form of a compiled database.
type Artifact struct {
	Source          string        `json:"source,omitempty" yaml:"source,omitempty"`
	RecordCount     int           `json:"record_count" yaml:"record_count"`
	ServiceStarts   []int         `json:"service_starts" yaml:"service_starts"`
	Records         []RecordEntry `json:"records" yaml:"records"`
	Characteristics []NameEntry   `json:"characteristics" yaml:"characteristics"`
	Read            []RouteEntry  `json:"read" yaml:"read"`
	Write           []RouteEntry  `json:"write" yaml:"write"`
}

// RecordEntry is one attribute record. Literal and symbolic fields are
// mutually exclusive.
type RecordEntry struct {
	Index        int     `json:"index" yaml:"index"`
	Kind         string  `json:"kind" yaml:"kind"`
	Owner        string  `json:"owner,omitempty" yaml:"owner,omitempty"`
	UUID         string  `json:"uuid" yaml:"uuid"`
	UUIDSize     int     `json:"uuid_size" yaml:"uuid_size"`
	Perm         *uint32 `json:"perm,omitempty" yaml:"perm,omitempty"`
	PermRef      string  `json:"perm_ref,omitempty" yaml:"perm_ref,omitempty"`
	MaxLength    *uint16 `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	MaxLengthRef string  `json:"max_length_ref,omitempty" yaml:"max_length_ref,omitempty"`
	Trigger      bool    `json:"trigger" yaml:"trigger"`
	Length       uint16  `json:"length" yaml:"length"`
	Value        string  `json:"value,omitempty" yaml:"value,omitempty"`
}

type NameEntry struct {
	Name  string `json:"name" yaml:"name"`
	Index uint16 `json:"index" yaml:"index"`
}

type RouteEntry struct {
	Index          uint16 `json:"index" yaml:"index"`
	Handler        string `json:"handler" yaml:"handler"`
	Characteristic string `json:"characteristic" yaml:"characteristic"`
}

// NewArtifact converts db. Max lengths include the trigger-indication bit.
func NewArtifact(db *attdb.Database, source string) *Artifact {
	a := &Artifact{
		Source:          source,
		RecordCount:     db.Len(),
		ServiceStarts:   db.ServiceStarts(),
		Records:         make([]RecordEntry, 0, db.Len()),
		Characteristics: make([]NameEntry, 0),
		Read:            make([]RouteEntry, 0),
		Write:           make([]RouteEntry, 0),
	}
	for _, r := range db.Records() {
		e := RecordEntry{
			Index:    r.Index,
			Kind:     r.Kind.String(),
			Owner:    r.Owner,
			UUID:     gatt.FormatUUID(r.UUID),
			UUIDSize: r.UUIDSize(),
			Trigger:  r.Trigger,
			Length:   r.Length,
		}
		if r.Perm.IsSymbolic() {
			e.PermRef = r.Perm.Ref
		} else {
			bits := r.Perm.Bits
			e.Perm = &bits
		}
		if word, ok := r.MaxLengthWord(); ok {
			e.MaxLength = &word
		} else {
			e.MaxLengthRef = r.MaxLength.Ref()
		}
		if r.Value != nil {
			e.Value = hex.EncodeToString(r.Value)
		}
		a.Records = append(a.Records, e)
	}
	for _, n := range db.Names() {
		a.Characteristics = append(a.Characteristics, NameEntry(n))
	}
	for _, r := range db.ReadRoutes() {
		a.Read = append(a.Read, RouteEntry(r))
	}
	for _, r := range db.WriteRoutes() {
		a.Write = append(a.Write, RouteEntry(r))
	}
	return a
}

// EmitJSON writes db as indented JSON.
func EmitJSON(w io.Writer, db *attdb.Database, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewArtifact(db, opts.Source))
}

// EmitYAML writes db as YAML.
func EmitYAML(w io.Writer, db *attdb.Database, opts Options) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewArtifact(db, opts.Source)); err != nil {
		return err
	}
	return enc.Close()
}
