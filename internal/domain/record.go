package domain

import "strings"

const (
	// Unannotated marks a field that was checked against every source but
	// never resolved to real content.
	Unannotated = "Unannotated"

	// SourceUnknown is the terminal provenance for records no source
	// contributed a single field to.
	SourceUnknown = "unresolved, source unknown"
)

// DrugRecord is the core entity describing one drug label, assembled
// field by field from prioritized sources.
type DrugRecord struct {
	Name              string
	Indications       string
	Contraindications string
	Interactions      string
	PregnancyCategory string
	Source            string
}

// FieldSet carries the four label fields a single source may contribute.
// Empty values mean the source had nothing for that field.
type FieldSet struct {
	Indications       string
	Contraindications string
	Interactions      string
	PregnancyCategory string
}

// NewDrugRecord creates an empty record for the given drug name.
func NewDrugRecord(name string) *DrugRecord {
	return &DrugRecord{Name: name}
}

// Complete reports whether all four content fields hold non-empty values.
func (r *DrugRecord) Complete() bool {
	return r.Indications != "" &&
		r.Contraindications != "" &&
		r.Interactions != "" &&
		r.PregnancyCategory != ""
}

// Fill copies non-empty values from fs into fields that are still empty.
// Already-resolved fields are never overwritten. Returns true when at
// least one field was filled.
func (r *DrugRecord) Fill(fs FieldSet) bool {
	contributed := false
	if r.Indications == "" && fs.Indications != "" {
		r.Indications = fs.Indications
		contributed = true
	}
	if r.Contraindications == "" && fs.Contraindications != "" {
		r.Contraindications = fs.Contraindications
		contributed = true
	}
	if r.Interactions == "" && fs.Interactions != "" {
		r.Interactions = fs.Interactions
		contributed = true
	}
	if r.PregnancyCategory == "" && fs.PregnancyCategory != "" {
		r.PregnancyCategory = fs.PregnancyCategory
		contributed = true
	}
	return contributed
}

// AttachSource appends a source label to the provenance string in
// contribution order.
func (r *DrugRecord) AttachSource(label string) {
	if strings.TrimSpace(label) == "" {
		return
	}
	if r.Source == "" {
		r.Source = label
		return
	}
	r.Source += " + " + label
}

// Finalize fills every remaining empty field with the sentinel and sets
// the terminal provenance marker when nothing contributed. After this the
// record satisfies the completeness guarantee unconditionally.
func (r *DrugRecord) Finalize() {
	if r.Indications == "" {
		r.Indications = Unannotated
	}
	if r.Contraindications == "" {
		r.Contraindications = Unannotated
	}
	if r.Interactions == "" {
		r.Interactions = Unannotated
	}
	if r.PregnancyCategory == "" {
		r.PregnancyCategory = Unannotated
	}
	if r.Source == "" {
		r.Source = SourceUnknown
	}
}
