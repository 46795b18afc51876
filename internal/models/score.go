package models

// ScoreDetail is a single scored criterion with the model's reasoning.
type ScoreDetail struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

type Completeness struct {
	ContactInformation ScoreDetail `json:"contactInformation"`
	DetailLevel        ScoreDetail `json:"detailLevel"`
}

type ImpactScore struct {
	ActiveVoiceUsage       ScoreDetail `json:"activeVoiceUsage"`
	QuantifiedAchievements ScoreDetail `json:"quantifiedAchievements"`
}

type RoleMatch struct {
	SkillsRelevance     ScoreDetail `json:"skillsRelevance"`
	ExperienceAlignment ScoreDetail `json:"experienceAlignment"`
	EducationFit        ScoreDetail `json:"educationFit"`
}

type KeywordMatch struct {
	ScoreDetail
	MatchedKeywords []string `json:"matchedKeywords,omitempty"`
	MissingKeywords []string `json:"missingKeywords,omitempty"`
}

type RequirementsMatch struct {
	ScoreDetail
	MatchedRequirements []string `json:"matchedRequirements,omitempty"`
	GapAnalysis         []string `json:"gapAnalysis,omitempty"`
}

type CompanyFit struct {
	ScoreDetail
	Suggestions []string `json:"suggestions,omitempty"`
}

type JobAlignment struct {
	KeywordMatch      KeywordMatch      `json:"keywordMatch"`
	RequirementsMatch RequirementsMatch `json:"requirementsMatch"`
	CompanyFit        CompanyFit        `json:"companyFit"`
}

// ResumeScore is the structured evaluation returned by the scoring model.
type ResumeScore struct {
	OverallScore            ScoreDetail            `json:"overallScore"`
	Completeness            Completeness           `json:"completeness"`
	ImpactScore             ImpactScore            `json:"impactScore"`
	RoleMatch               RoleMatch              `json:"roleMatch"`
	JobAlignment            *JobAlignment          `json:"jobAlignment,omitempty"`
	Miscellaneous           map[string]ScoreDetail `json:"miscellaneous"`
	OverallImprovements     []string               `json:"overallImprovements,omitempty"`
	JobSpecificImprovements []string               `json:"jobSpecificImprovements,omitempty"`
	IsTailoredResume        bool                   `json:"isTailoredResume"`
}
