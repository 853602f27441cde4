package domain

import (
	"fmt"
	"strings"
)

// SectionName is one of the six canonical persona headers.
type SectionName string

const (
	SectionDemographics SectionName = "DEMOGRAPHICS"
	SectionBehaviour    SectionName = "BEHAVIOUR & HABITS"
	SectionFrustrations SectionName = "FRUSTRATIONS"
	SectionMotivations  SectionName = "MOTIVATIONS"
	SectionPersonality  SectionName = "PERSONALITY"
	SectionGoals        SectionName = "GOALS & NEEDS"
)

// SectionOrder is the fixed order of sections in every persona document.
var SectionOrder = []SectionName{
	SectionDemographics,
	SectionBehaviour,
	SectionFrustrations,
	SectionMotivations,
	SectionPersonality,
	SectionGoals,
}

// Labeled reports whether attributes in the section carry a "Label:" prefix.
func (n SectionName) Labeled() bool {
	switch n {
	case SectionDemographics, SectionMotivations, SectionPersonality:
		return true
	}
	return false
}

// NoCitation is the rendered form of an attribute without a source.
const NoCitation = "N/A"

// Attribute is one bullet of a section. An empty Citation means no citation
// is available.
type Attribute struct {
	Label    string
	Value    string
	Citation string
}

// Cited reports whether the attribute references an activity record.
func (a Attribute) Cited() bool { return a.Citation != "" }

func (a Attribute) line() string {
	content := a.Value
	if a.Label != "" {
		content = strings.TrimSpace(a.Label + ": " + a.Value)
	}
	citation := a.Citation
	if citation == "" {
		citation = NoCitation
	}
	if content == "" {
		return fmt.Sprintf("- [Source: %s]", citation)
	}
	return fmt.Sprintf("- %s [Source: %s]", content, citation)
}

type Section struct {
	Name       SectionName
	Attributes []Attribute
}

// DocumentStatus tells complete personas apart from the degraded variants.
type DocumentStatus string

const (
	StatusComplete DocumentStatus = "complete"
	StatusEmpty    DocumentStatus = "empty"
	StatusFailed   DocumentStatus = "failed"
)

// PersonaDocument is the persona built for one username. Complete documents
// always hold the six sections in SectionOrder.
type PersonaDocument struct {
	Username  string
	Status    DocumentStatus
	Sections  []Section
	Anomalies []Anomaly
}

// NewPersonaDocument returns a complete document with six empty sections.
func NewPersonaDocument(username string) PersonaDocument {
	doc := PersonaDocument{Username: username, Status: StatusComplete}
	for _, name := range SectionOrder {
		doc.Sections = append(doc.Sections, Section{Name: name})
	}
	return doc
}

// EmptyPersona is produced when the user has no activity at all.
func EmptyPersona(username string) PersonaDocument {
	return PersonaDocument{Username: username, Status: StatusEmpty}
}

// FailedPersona marks a document whose generation failed.
func FailedPersona(username string) PersonaDocument {
	return PersonaDocument{Username: username, Status: StatusFailed}
}

// Section returns the named section, or nil.
func (d *PersonaDocument) Section(name SectionName) *Section {
	for i := range d.Sections {
		if d.Sections[i].Name == name {
			return &d.Sections[i]
		}
	}
	return nil
}

// Text renders the plain-text form written by persona sinks.
func (d PersonaDocument) Text() string {
	switch d.Status {
	case StatusEmpty:
		return fmt.Sprintf("Persona for %s:\nNo data available to generate persona.\n", d.Username)
	case StatusFailed:
		return fmt.Sprintf("Persona for %s:\nFailed to generate persona due to an error.\n", d.Username)
	}

	var sb strings.Builder
	sb.WriteString(d.Username)
	sb.WriteString("\n")
	for i, s := range d.Sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(string(s.Name))
		sb.WriteString("\n")
		for _, a := range s.Attributes {
			sb.WriteString(a.line())
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
