package optimize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/resume-genie/internal/llm"
	"github.com/jonathan/resume-genie/internal/schemas"
	"github.com/jonathan/resume-genie/internal/types"
)

// skill groups in the order they are flattened when the model returns skills by category
var skillGroupOrder = []string{"technical", "tools", "languages", "frameworks", "soft"}

// text is a string field that also accepts numbers, booleans and null
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(strings.TrimSpace(s))
	case data[0] == '{' || data[0] == '[':
		return fmt.Errorf("expected a scalar, got %s", string(data))
	default:
		*t = text(data)
	}
	return nil
}

// skillList accepts a list of names or records, or an object of category to list
type skillList []types.Skill

func (s *skillList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if data[0] != '{' {
		var list []types.Skill
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*s = list
		return nil
	}

	var groups map[string]json.RawMessage
	if err := json.Unmarshal(data, &groups); err != nil {
		return err
	}

	var flat []types.Skill
	for _, key := range groupKeys(groups) {
		var list skillList
		if err := json.Unmarshal(groups[key], &list); err != nil {
			return fmt.Errorf("skills.%s: %w", key, err)
		}
		flat = append(flat, list...)
	}
	*s = flat
	return nil
}

// groupKeys orders known categories first and the rest alphabetically
func groupKeys(groups map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(groups))
	known := make(map[string]bool, len(skillGroupOrder))
	for _, k := range skillGroupOrder {
		known[k] = true
		if _, ok := groups[k]; ok {
			keys = append(keys, k)
		}
	}

	var rest []string
	for k := range groups {
		if !known[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

type aiExperience struct {
	Title            text     `json:"title"`
	Company          text     `json:"company"`
	Location         text     `json:"location"`
	StartDate        text     `json:"startDate"`
	EndDate          text     `json:"endDate"`
	Achievements     []string `json:"achievements"`
	Responsibilities []string `json:"responsibilities"`
	OptimizedBullets []string `json:"optimizedBullets"`
	BulletPoints     []string `json:"bulletPoints"`
	Technologies     []string `json:"technologies"`
}

type aiEducation struct {
	Degree         text     `json:"degree"`
	Field          text     `json:"field"`
	Institution    text     `json:"institution"`
	Location       text     `json:"location"`
	StartDate      text     `json:"startDate"`
	EndDate        text     `json:"endDate"`
	GraduationDate text     `json:"graduationDate"`
	GPA            text     `json:"gpa"`
	Coursework     []string `json:"coursework"`
	Relevant       []string `json:"relevant"`
}

type aiCertification struct {
	Name   text     `json:"name"`
	Issuer text     `json:"issuer"`
	Date   text     `json:"date"`
	Skills []string `json:"skills"`
}

func (c *aiCertification) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name text
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*c = aiCertification{Name: name}
		return nil
	}

	type plain aiCertification
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = aiCertification(p)
	return nil
}

type aiProject struct {
	Name         text     `json:"name"`
	Description  text     `json:"description"`
	Date         text     `json:"date"`
	Technologies []string `json:"technologies"`
	Achievements []string `json:"achievements"`
}

type aiResume struct {
	Name           text              `json:"name"`
	Email          text              `json:"email"`
	Phone          text              `json:"phone"`
	Location       text              `json:"location"`
	Summary        text              `json:"summary"`
	Experience     []aiExperience    `json:"experience"`
	Education      []aiEducation     `json:"education"`
	Skills         skillList         `json:"skills"`
	Certifications []aiCertification `json:"certifications"`
	Projects       []aiProject       `json:"projects"`
	Honors         []string          `json:"honors"`
}

// aiResponse is the JSON object the model is asked to return
type aiResponse struct {
	ParsedResume            aiResume             `json:"parsedResume"`
	OptimizedSummary        text                 `json:"optimizedSummary"`
	OptimizedExperience     []aiExperience       `json:"optimizedExperience"`
	OptimizedEducation      []aiEducation        `json:"optimizedEducation"`
	OptimizedCertifications []aiCertification    `json:"optimizedCertifications"`
	OptimizedProjects       []aiProject          `json:"optimizedProjects"`
	SkillsAnalysis          types.SkillsAnalysis `json:"skillsAnalysis"`
	ATSScore                types.ATSScore       `json:"atsScore"`
	Suggestions             []types.Suggestion   `json:"suggestions"`
	Keywords                types.Keywords       `json:"keywords"`
}

// ParseResponse turns raw model output into an optimization result for original.
// Code fences and surrounding prose are stripped before the JSON is validated.
func ParseResponse(raw string, original types.Draft) (*types.OptimizationResult, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if !json.Valid([]byte(cleaned)) {
		return nil, &ParseError{Message: "response is not valid JSON", Response: raw}
	}

	if err := schemas.Validate(schemas.OptimizationResponse, []byte(cleaned)); err != nil {
		return nil, &ParseError{Message: "response does not match the expected structure", Response: raw, Cause: err}
	}

	var resp aiResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, &ParseError{Message: "failed to decode response", Response: raw, Cause: err}
	}

	return resp.result(original), nil
}

func (r *aiResponse) result(original types.Draft) *types.OptimizationResult {
	parsed := r.ParsedResume

	record := types.ResumeRecord{
		Name:     firstNonEmpty(string(parsed.Name), original.Record.Name),
		Email:    firstNonEmpty(string(parsed.Email), original.Record.Email),
		Phone:    firstNonEmpty(string(parsed.Phone), original.Record.Phone),
		Location: firstNonEmpty(string(parsed.Location), original.Record.Location),
		Summary:  firstNonEmpty(string(r.OptimizedSummary), string(parsed.Summary)),
		Skills:   r.skills(),
		Honors:   parsed.Honors,
	}

	if len(r.OptimizedExperience) > 0 {
		for i, e := range r.OptimizedExperience {
			exp := e.record(e.OptimizedBullets, e.BulletPoints, e.Achievements)
			if i < len(parsed.Experience) {
				p := parsed.Experience[i]
				exp = fillExperience(exp, p.record(p.Achievements, p.Responsibilities, p.OptimizedBullets))
			}
			record.Experience = append(record.Experience, exp)
		}
	} else {
		for _, e := range parsed.Experience {
			record.Experience = append(record.Experience, e.record(e.Achievements, e.Responsibilities, e.OptimizedBullets))
		}
	}

	for _, e := range preferred(r.OptimizedEducation, parsed.Education) {
		record.Education = append(record.Education, e.record())
	}
	for _, c := range preferred(r.OptimizedCertifications, parsed.Certifications) {
		record.Certifications = append(record.Certifications, c.record())
	}
	for _, p := range preferred(r.OptimizedProjects, parsed.Projects) {
		record.Projects = append(record.Projects, p.record())
	}

	record.Normalize()

	suggestions := r.Suggestions
	if suggestions == nil {
		suggestions = []types.Suggestion{}
	}

	return &types.OptimizationResult{
		Original:         original,
		Resume:           record,
		OptimizedSummary: string(r.OptimizedSummary),
		SkillsAnalysis:   r.SkillsAnalysis,
		ATSScore:         r.ATSScore,
		Suggestions:      suggestions,
		Keywords:         r.Keywords,
		AIPowered:        true,
	}
}

// skills prefers the ranked analysis and falls back to the parsed list
func (r *aiResponse) skills() []types.Skill {
	var skills []types.Skill
	for _, ranked := range r.SkillsAnalysis.Ranked {
		name := strings.TrimSpace(ranked.Skill)
		if name == "" {
			continue
		}
		skills = append(skills, types.RecordSkill(types.NamedSkill{
			Name:       name,
			Relevance:  ranked.Relevance,
			Suggested:  !ranked.InResume,
			MatchesJob: ranked.InJobDescription,
		}))
	}
	if len(skills) > 0 {
		return skills
	}
	return r.ParsedResume.Skills
}

// record uses the first non-empty bullet list
func (e aiExperience) record(bullets ...[]string) types.Experience {
	exp := types.Experience{
		Title:        string(e.Title),
		Company:      string(e.Company),
		Location:     string(e.Location),
		StartDate:    string(e.StartDate),
		EndDate:      string(e.EndDate),
		Technologies: e.Technologies,
	}
	for _, b := range bullets {
		if len(b) > 0 {
			exp.Achievements = b
			break
		}
	}
	return exp
}

// fillExperience completes an optimized entry with the fields the model left out
func fillExperience(exp, parsed types.Experience) types.Experience {
	exp.Title = firstNonEmpty(exp.Title, parsed.Title)
	exp.Company = firstNonEmpty(exp.Company, parsed.Company)
	exp.Location = firstNonEmpty(exp.Location, parsed.Location)
	exp.StartDate = firstNonEmpty(exp.StartDate, parsed.StartDate)
	exp.EndDate = firstNonEmpty(exp.EndDate, parsed.EndDate)
	if len(exp.Achievements) == 0 {
		exp.Achievements = parsed.Achievements
	}
	if len(exp.Technologies) == 0 {
		exp.Technologies = parsed.Technologies
	}
	return exp
}

func (e aiEducation) record() types.Education {
	coursework := e.Coursework
	if len(coursework) == 0 {
		coursework = e.Relevant
	}
	return types.Education{
		Degree:      string(e.Degree),
		Field:       string(e.Field),
		Institution: string(e.Institution),
		Location:    string(e.Location),
		StartDate:   string(e.StartDate),
		EndDate:     firstNonEmpty(string(e.EndDate), string(e.GraduationDate)),
		GPA:         string(e.GPA),
		Coursework:  coursework,
	}
}

func (c aiCertification) record() types.Certification {
	return types.Certification{
		Name:   string(c.Name),
		Issuer: string(c.Issuer),
		Date:   string(c.Date),
		Skills: c.Skills,
	}
}

func (p aiProject) record() types.Project {
	return types.Project{
		Name:         string(p.Name),
		Description:  string(p.Description),
		Date:         string(p.Date),
		Technologies: p.Technologies,
		Achievements: p.Achievements,
	}
}

func preferred[T any](optimized, parsed []T) []T {
	if len(optimized) > 0 {
		return optimized
	}
	return parsed
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
