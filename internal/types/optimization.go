package types

// Link is a profile link detected in resume text
type Link struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Draft is the heuristic, best-effort reading of raw resume text.
// The optimizer is expected to overwrite most of it.
type Draft struct {
	Record  ResumeRecord `json:"record"`
	Links   []Link       `json:"links"`
	RawText string       `json:"rawText"`
}

// OptimizationResult is what the optimizer returns for one upload
type OptimizationResult struct {
	Original         Draft          `json:"original"`
	Resume           ResumeRecord   `json:"optimized"`
	OptimizedSummary string         `json:"optimizedSummary,omitempty"`
	SkillsAnalysis   SkillsAnalysis `json:"skillsAnalysis"`
	ATSScore         ATSScore       `json:"atsScore"`
	Suggestions      []Suggestion   `json:"suggestions"`
	Keywords         Keywords       `json:"keywords"`
	AIPowered        bool           `json:"aiPowered"`
}

// ATSScore is the model's applicant tracking system compatibility assessment
type ATSScore struct {
	Overall    float64            `json:"overall"`
	Breakdown  map[string]float64 `json:"breakdown,omitempty"`
	Grade      string             `json:"grade,omitempty"`
	Verdict    string             `json:"verdict,omitempty"`
	Strengths  []string           `json:"strengths,omitempty"`
	Weaknesses []string           `json:"weaknesses,omitempty"`
}

// RankedSkill is a skill scored against the job description
type RankedSkill struct {
	Skill            string  `json:"skill"`
	Relevance        float64 `json:"relevance"`
	InResume         bool    `json:"inResume"`
	InJobDescription bool    `json:"inJobDescription"`
}

// SkillsAnalysis compares resume skills with the job description
type SkillsAnalysis struct {
	Matched   []string      `json:"matched,omitempty"`
	Missing   []string      `json:"missing,omitempty"`
	Suggested []string      `json:"suggested,omitempty"`
	Ranked    []RankedSkill `json:"ranked,omitempty"`
}

// Suggestion is a single actionable improvement
type Suggestion struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// Keywords summarizes job description keyword coverage
type Keywords struct {
	Extracted       []string `json:"extracted,omitempty"`
	Missing         []string `json:"missing,omitempty"`
	Present         []string `json:"present,omitempty"`
	MatchPercentage float64  `json:"matchPercentage,omitempty"`
}
