// Package types provides type definitions for structured data used throughout the resume-genie system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ResumeRecord is the normalized resume shared by the extractor, the optimizer and the renderer.
// Every collection is non-nil after Normalize.
type ResumeRecord struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Summary  string `json:"summary"`

	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Skills         []Skill         `json:"skills"`
	Certifications []Certification `json:"certifications"`
	Projects       []Project       `json:"projects"`
	Honors         []string        `json:"honors"`
}

// Experience is a single position held
type Experience struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	Achievements []string `json:"achievements"`
	Technologies []string `json:"technologies"`
}

// Education is a single degree or program
type Education struct {
	Degree      string   `json:"degree"`
	Field       string   `json:"field"`
	Institution string   `json:"institution"`
	Location    string   `json:"location"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	GPA         string   `json:"gpa"`
	Coursework  []string `json:"coursework"`
}

// Certification is a professional certification
type Certification struct {
	Name   string   `json:"name"`
	Issuer string   `json:"issuer"`
	Date   string   `json:"date"`
	Skills []string `json:"skills"`
}

// UnmarshalJSON accepts either a bare certification name or the full object.
func (c *Certification) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*c = Certification{Name: name}
		return nil
	}

	type plain Certification
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Certification(p)
	return nil
}

// Project is a personal or professional project
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Date         string   `json:"date"`
	Technologies []string `json:"technologies"`
	Achievements []string `json:"achievements"`
}

// SkillKind tags which variant a Skill holds
type SkillKind int

const (
	// SkillBare is a skill given as a plain name
	SkillBare SkillKind = iota
	// SkillNamed is a skill given as a record with a name and optional scoring metadata
	SkillNamed
)

// NamedSkill is the record form of a skill, as produced by the optimizer
type NamedSkill struct {
	Name       string  `json:"name"`
	Relevance  float64 `json:"relevance,omitempty"`
	Suggested  bool    `json:"suggested,omitempty"`
	MatchesJob bool    `json:"matchesJob,omitempty"`
}

// Skill is a tagged union of a bare name or a NamedSkill record.
// Use Name to read the display name regardless of the variant.
type Skill struct {
	Kind  SkillKind
	bare  string
	named NamedSkill
}

// BareSkill creates a skill from a plain name
func BareSkill(name string) Skill {
	return Skill{Kind: SkillBare, bare: name}
}

// RecordSkill creates a skill from a record
func RecordSkill(s NamedSkill) Skill {
	return Skill{Kind: SkillNamed, named: s}
}

// Name returns the skill's display name
func (s Skill) Name() string {
	if s.Kind == SkillNamed {
		return s.named.Name
	}
	return s.bare
}

// Record returns the record form and whether the skill holds one
func (s Skill) Record() (NamedSkill, bool) {
	return s.named, s.Kind == SkillNamed
}

// MarshalJSON writes bare skills as strings and named skills as objects
func (s Skill) MarshalJSON() ([]byte, error) {
	if s.Kind == SkillNamed {
		return json.Marshal(s.named)
	}
	return json.Marshal(s.bare)
}

// UnmarshalJSON reads either `"Go"` or `{"name": "Go", ...}`
func (s *Skill) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty skill entry")
	}

	switch data[0] {
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*s = BareSkill(name)
		return nil
	case '{':
		var named NamedSkill
		if err := json.Unmarshal(data, &named); err != nil {
			return err
		}
		*s = RecordSkill(named)
		return nil
	default:
		return fmt.Errorf("skill entry must be a string or an object, got %s", string(data))
	}
}

// SkillNames flattens skills to their names, preserving order
func SkillNames(skills []Skill) []string {
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.Name()
	}
	return names
}

// Normalize replaces every nil collection, including nested ones, with an empty slice.
func (r *ResumeRecord) Normalize() {
	r.Experience = orEmpty(r.Experience)
	for i := range r.Experience {
		r.Experience[i].Achievements = orEmpty(r.Experience[i].Achievements)
		r.Experience[i].Technologies = orEmpty(r.Experience[i].Technologies)
	}

	r.Education = orEmpty(r.Education)
	for i := range r.Education {
		r.Education[i].Coursework = orEmpty(r.Education[i].Coursework)
	}

	r.Skills = orEmpty(r.Skills)

	r.Certifications = orEmpty(r.Certifications)
	for i := range r.Certifications {
		r.Certifications[i].Skills = orEmpty(r.Certifications[i].Skills)
	}

	r.Projects = orEmpty(r.Projects)
	for i := range r.Projects {
		r.Projects[i].Technologies = orEmpty(r.Projects[i].Technologies)
		r.Projects[i].Achievements = orEmpty(r.Projects[i].Achievements)
	}

	r.Honors = orEmpty(r.Honors)
}

// NewResumeRecord returns an empty, normalized record
func NewResumeRecord() ResumeRecord {
	var r ResumeRecord
	r.Normalize()
	return r
}

// DecodeResumeRecord decodes a record from JSON and normalizes it
func DecodeResumeRecord(data []byte) (ResumeRecord, error) {
	var r ResumeRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return ResumeRecord{}, fmt.Errorf("failed to decode resume record: %w", err)
	}
	r.Normalize()
	return r, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
