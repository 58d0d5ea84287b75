package rendering

import (
	"strings"
	"time"

	"github.com/jonathan/resume-genie/internal/types"
)

// documentView is the escaped form of a ResumeRecord that every layout template reads.
// No template escapes anything itself.
type documentView struct {
	Name      string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Location  string
	Summary   string

	Experience     []experienceView
	Education      []educationView
	Skills         []string
	Certifications []certificationView
	Projects       []projectView
	Honors         []string

	LastUpdated string
	Footer      bool
	SkillSep    string
}

type experienceView struct {
	Title        string
	Company      string
	Location     string
	Dates        string
	Achievements []string
	Technologies []string
}

type educationView struct {
	Degree      string
	Institution string
	Location    string
	Dates       string
	GPA         string
	Coursework  []string
}

type certificationView struct {
	Name   string
	Issuer string
	Date   string
	Skills []string
}

type projectView struct {
	Name         string
	Description  string
	Date         string
	Technologies []string
	Achievements []string
}

// buildView escapes every field of record exactly once
func buildView(record types.ResumeRecord, now time.Time) documentView {
	v := documentView{
		Name:        EscapeLaTeX(strings.TrimSpace(record.Name)),
		Email:       EscapeLaTeX(strings.TrimSpace(record.Email)),
		Phone:       EscapeLaTeX(strings.TrimSpace(record.Phone)),
		Location:    EscapeLaTeX(strings.TrimSpace(record.Location)),
		Summary:     EscapeLaTeX(strings.TrimSpace(record.Summary)),
		Skills:      escapeEach(types.SkillNames(record.Skills)),
		Honors:      escapeEach(record.Honors),
		LastUpdated: now.Format("January 2006"),
	}
	v.FirstName, v.LastName = splitName(strings.TrimSpace(record.Name))

	for _, exp := range record.Experience {
		v.Experience = append(v.Experience, experienceView{
			Title:        EscapeLaTeX(exp.Title),
			Company:      EscapeLaTeX(exp.Company),
			Location:     EscapeLaTeX(exp.Location),
			Dates:        EscapeLaTeX(dateRange(exp.StartDate, exp.EndDate)),
			Achievements: escapeEach(exp.Achievements),
			Technologies: escapeEach(exp.Technologies),
		})
	}

	for _, edu := range record.Education {
		degree := strings.TrimSpace(edu.Degree)
		if field := strings.TrimSpace(edu.Field); field != "" {
			if degree == "" {
				degree = field
			} else {
				degree += " in " + field
			}
		}
		v.Education = append(v.Education, educationView{
			Degree:      EscapeLaTeX(degree),
			Institution: EscapeLaTeX(edu.Institution),
			Location:    EscapeLaTeX(edu.Location),
			Dates:       EscapeLaTeX(dateRange(edu.StartDate, edu.EndDate)),
			GPA:         EscapeLaTeX(edu.GPA),
			Coursework:  escapeEach(edu.Coursework),
		})
	}

	for _, cert := range record.Certifications {
		v.Certifications = append(v.Certifications, certificationView{
			Name:   EscapeLaTeX(cert.Name),
			Issuer: EscapeLaTeX(cert.Issuer),
			Date:   EscapeLaTeX(cert.Date),
			Skills: escapeEach(cert.Skills),
		})
	}

	for _, proj := range record.Projects {
		v.Projects = append(v.Projects, projectView{
			Name:         EscapeLaTeX(proj.Name),
			Description:  EscapeLaTeX(proj.Description),
			Date:         EscapeLaTeX(proj.Date),
			Technologies: escapeEach(proj.Technologies),
			Achievements: escapeEach(proj.Achievements),
		})
	}

	return v
}

// dateRange joins start and end as "start - end", or returns whichever one is present
func dateRange(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start != "" && end != "":
		return start + " - " + end
	case start != "":
		return start
	default:
		return end
	}
}

// splitName returns the first token and the remaining tokens, both escaped
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return EscapeLaTeX(parts[0]), EscapeLaTeX(strings.Join(parts[1:], " "))
}
