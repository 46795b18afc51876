package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"alfredoptarigan/kryptohire/internal/models"
)

// weakScoreThreshold marks a criterion the optimizer should work on.
const weakScoreThreshold = 80

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

const formatJobSystem = `You are an AI assistant specializing in structured data extraction from job listings. You have been provided with a schema and must adhere to it strictly.
IMPORTANT: For any missing or uncertain information, you must return an empty string ("") - never return "<UNKNOWN>" or similar placeholders.

Read the entire job listing thoroughly to understand context, responsibilities, requirements, and any other relevant details.
Do not guess or fabricate information that is not present in the listing; return an empty string for missing fields.
Do not include chain-of-thought or intermediate reasoning in the final output; provide only the structured results.

For the description field:
1. Start with 3-5 bullet points highlighting the most important responsibilities of the role, each on a new line starting with "• ".
2. After the bullet points, include the full job description stripped of any non-job-related content, as clean paragraphs.`

// BuildFormatJobPrompt asks for the structured job listing extracted from raw text.
func (pb *PromptBuilder) BuildFormatJobPrompt(listing string) (string, string) {
	return formatJobSystem, fmt.Sprintf(`Analyze this job listing carefully and extract structured information.

TASK 1 - ESSENTIAL INFORMATION:
Extract the basic details (company, position, URL, location, salary).
For the description, include 3-5 key responsibilities as bullet points.

TASK 2 - KEYWORD ANALYSIS:
1. Technical Skills: Identify all technical skills, programming languages, frameworks, and tools
2. Soft Skills: Extract interpersonal and professional competencies
3. Industry Knowledge: Capture domain-specific knowledge requirements
4. Required Qualifications: List education and experience levels under "requirements"
5. Responsibilities: Key job functions and deliverables

Keep keywords as they are (e.g., "React.js" stays "React.js") and deduplicate them.
If certain details (like salary or location) are missing, return "".
Wrap the listing in {"content": {...}}.

FORMAT THE FOLLOWING JOB LISTING AS A JSON OBJECT:
%s`, listing)
}

const tailorSystem = `You are Kryptohire, an advanced AI resume transformer. Rewrite the resume so it is ATS-friendly and tightly aligned to the job description, without adding new facts or inventing experience.

Guidelines:
- Integrate job-specific terminology and reorder content to surface the most relevant experience first. Mirror the job's vocabulary when it is factual.
- Use STAR reasoning internally but write each bullet as a single, natural resume bullet. NEVER include labels like "Situation", "Task", "Action", "Result", "Context", or "Outcome" in the output.
- Lead bullets with strong action verbs, keep them concise, and anchor claims with concrete, job-relevant metrics.
- Enrich tech details with versions/frameworks when present in the source; do not fabricate tools or versions.
- Preserve chronology and factual accuracy; if something is missing in the resume, do not invent it, map to the closest truthful concept instead.
- Remove any internal notes or annotations; the output is clean, professional resume content only.

Your task: produce a polished, tailored resume wrapped as {"content": {...}} that reads like a refined human-written resume.`

func (pb *PromptBuilder) BuildTailorPrompt(resume *models.Resume, job models.JobListing) (string, string) {
	return tailorSystem, fmt.Sprintf(`This is the Resume:
%s

This is the Job Description:
%s`, toJSON(resume.Content()), toJSON(job))
}

type scoringContact struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Location    string `json:"location"`
	Website     string `json:"website"`
	LinkedinURL string `json:"linkedin_url"`
	GithubURL   string `json:"github_url"`
}

type scoringResume struct {
	TargetRole     string                  `json:"target_role"`
	IsBaseResume   bool                    `json:"is_base_resume"`
	Contact        scoringContact          `json:"contact"`
	WorkExperience []models.WorkExperience `json:"work_experience"`
	Education      []models.Education      `json:"education"`
	Skills         []models.Skill          `json:"skills"`
	Projects       []models.Project        `json:"projects"`
}

const scoreSystem = `You are Kryptohire, an expert resume reviewer and ATS specialist. Score every criterion from 0 to 100 and justify each score in one or two sentences. Be strict and consistent across runs.`

// BuildScorePrompt scores a resume; job alignment is only requested for tailored resumes with a job.
func (pb *PromptBuilder) BuildScorePrompt(resume *models.Resume, job *models.Job) (string, string) {
	content := resume.Content()
	forScoring := scoringResume{
		TargetRole:   resume.TargetRole,
		IsBaseResume: resume.IsBaseResume,
		Contact: scoringContact{
			FirstName:   resume.FirstName,
			LastName:    resume.LastName,
			Email:       resume.Email,
			PhoneNumber: resume.PhoneNumber,
			Location:    resume.Location,
			Website:     resume.Website,
			LinkedinURL: resume.LinkedinURL,
			GithubURL:   resume.GithubURL,
		},
		WorkExperience: content.WorkExperience,
		Education:      content.Education,
		Skills:         content.Skills,
		Projects:       content.Projects,
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Generate a comprehensive score for this resume: %s

MUST include a 'miscellaneous' field with 2-3 metrics following this format:
{
  "metricName": {
    "score": number,
    "reason": "string explanation"
  }
}
Example:
"keywordOptimization": {
  "score": 85,
  "reason": "Good use of industry keywords but could add more variation"
}
`, compactJSON(forScoring))

	if job != nil && !resume.IsBaseResume {
		fmt.Fprintf(&b, `
THIS IS A TAILORED RESUME FOR A SPECIFIC JOB. Job details: %s

IMPORTANT: Since this is a tailored resume, you MUST include the 'jobAlignment' field with detailed analysis:

1. KEYWORD MATCH ANALYSIS:
   - Compare resume content with job description keywords
   - Identify matched keywords and missing critical keywords
   - Score based on keyword density and relevance

2. REQUIREMENTS MATCH ANALYSIS:
   - Analyze how well the resume addresses job requirements
   - Identify which requirements are clearly addressed
   - Highlight gaps where requirements aren't demonstrated

3. COMPANY FIT ANALYSIS:
   - Assess alignment with company culture/values (if mentioned in job description)
   - Evaluate positioning for this specific role
   - Suggest improvements for better company alignment

ALSO INCLUDE:
- Set 'isTailoredResume' to true
- Provide 'jobSpecificImprovements' with 3-5 specific suggestions for this job
- Weight the overall score more heavily on job alignment factors

Focus on actionable insights that help the candidate better align their resume with this specific opportunity.
`, compactJSON(job.Listing()))
	} else {
		b.WriteString(`
This is a base resume (not tailored to a specific job).
- Set 'isTailoredResume' to false
- Do NOT include the 'jobAlignment' field
- Focus on general resume best practices and improvements
`)
	}

	return scoreSystem, b.String()
}

// WeakAreas lists criteria scoring below the threshold together with the suggestions to fix them.
func WeakAreas(score *models.ResumeScore) ([]string, []string) {
	var weak, suggestions []string
	check := func(name string, d models.ScoreDetail, extra ...string) {
		if d.Score >= weakScoreThreshold {
			return
		}
		weak = append(weak, name)
		suggestions = append(suggestions, d.Reason)
		suggestions = append(suggestions, extra...)
	}

	check("Contact Information", score.Completeness.ContactInformation)
	check("Detail Level", score.Completeness.DetailLevel)
	check("Active Voice Usage", score.ImpactScore.ActiveVoiceUsage)
	check("Quantified Achievements", score.ImpactScore.QuantifiedAchievements)
	check("Skills Relevance", score.RoleMatch.SkillsRelevance)
	check("Experience Alignment", score.RoleMatch.ExperienceAlignment)
	check("Education Fit", score.RoleMatch.EducationFit)

	if ja := score.JobAlignment; ja != nil {
		var kw, gaps []string
		if len(ja.KeywordMatch.MissingKeywords) > 0 {
			kw = append(kw, "Missing keywords: "+strings.Join(ja.KeywordMatch.MissingKeywords, ", "))
		}
		if len(ja.RequirementsMatch.GapAnalysis) > 0 {
			gaps = append(gaps, "Gaps: "+strings.Join(ja.RequirementsMatch.GapAnalysis, ", "))
		}
		check("Keyword Match", ja.KeywordMatch.ScoreDetail, kw...)
		check("Requirements Match", ja.RequirementsMatch.ScoreDetail, gaps...)
		check("Company Fit", ja.CompanyFit.ScoreDetail)
	}

	suggestions = append(suggestions, score.OverallImprovements...)
	suggestions = append(suggestions, score.JobSpecificImprovements...)
	return weak, suggestions
}

const optimizeSystem = `You are an expert resume optimizer. You rewrite resumes to close the gaps a reviewer found, never inventing facts. Return {"content": {...}, "changes_made": [...]} where changes_made lists each concrete edit in one short sentence.`

func (pb *PromptBuilder) BuildOptimizationPrompt(score *models.ResumeScore, resume *models.Resume, job *models.Job) (string, string) {
	weak, suggestions := WeakAreas(score)

	weakText := "None identified"
	if len(weak) > 0 {
		weakText = numbered(weak)
	}

	return optimizeSystem, fmt.Sprintf(`You are an expert resume optimizer. Optimize this resume to better align with the job description.

CURRENT RESUME:
%s

JOB DESCRIPTION:
%s

CURRENT SCORE: %g/100

WEAK AREAS REQUIRING IMPROVEMENT (score < %d):
%s

SPECIFIC IMPROVEMENT SUGGESTIONS:
%s

OPTIMIZATION INSTRUCTIONS:
1. Focus ONLY on the weak areas listed above
2. Incorporate missing keywords naturally into work experience bullets
3. Quantify achievements with specific metrics where possible
4. Use strong action verbs and active voice
5. Ensure all content is truthful and based on existing resume data
6. DO NOT fabricate experience or skills
7. Maintain chronological accuracy
8. Keep bullets concise (1-2 lines max)
9. Remove any STAR labels or annotations from the output

Return the optimized resume that addresses these specific weak areas while maintaining factual accuracy.`,
		toJSON(resume.Content()), toJSON(job.Listing()), score.OverallScore.Score, weakScoreThreshold, weakText, numbered(suggestions))
}

const coverLetterSystem = `You are Kryptohire, a professional career writer. Write cover letters that are specific to the company and role, grounded strictly in the candidate's resume, and free of clichés. Return {"content": "..."} with the letter as plain text paragraphs separated by blank lines.`

var coverLetterLengths = map[string]string{
	"short":  "about 150 words in 2-3 paragraphs",
	"medium": "about 250 words in 3-4 paragraphs",
	"long":   "about 400 words in 4-5 paragraphs",
}

func (pb *PromptBuilder) BuildCoverLetterPrompt(resume *models.Resume, job *models.Job, tone, length string) (string, string) {
	name := strings.TrimSpace(resume.FirstName + " " + resume.LastName)
	return coverLetterSystem, fmt.Sprintf(`Write a %s cover letter of %s.

CANDIDATE: %s

RESUME:
%s

JOB:
%s

Open with why the candidate fits this specific role, connect two or three concrete achievements to the job's needs, and close with a clear call to action. Do not invent experience.`,
		tone, coverLetterLengths[length], name, toJSON(resume.Content()), toJSON(job.Listing()))
}

const chatSystem = `You are Kryptohire, an AI assistant specialized in resume crafting and ATS optimization.
Apply the user's request directly to the resume and return the full updated resume.
Be direct and actionable, keep content truthful, and never add information about the user that you don't have.
PLEASE ALWAYS IGNORE PROFESSIONAL SUMMARIES. NEVER SUGGEST THEM OR USE THEM.
Return {"content": {...}, "message": "<short reply to the user>", "changes_applied": [{"section": "...", "description": "..."}]}.`

func (pb *PromptBuilder) BuildChatPrompt(resume *models.Resume, job *models.Job, message string) (string, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "CURRENT RESUME:\n%s\n\n", toJSON(resume.Content()))
	if job != nil {
		fmt.Fprintf(&b, "TARGET JOB:\n%s\n\n", toJSON(job.Listing()))
	}
	fmt.Fprintf(&b, "USER REQUEST:\n%s", message)
	return chatSystem, b.String()
}

const importSystem = `You are Kryptohire, an expert system specialized in analyzing resume text and extracting structured information.

Extract professional experiences, skills, projects, education and contact details into the schema.
Keep extracted information truthful and accurate; don't fabricate or embellish details and preserve original metrics and numbers.
Group similar skills into categories, remove personal pronouns and use active voice.
Use empty arrays ([]) for sections without data and empty strings for missing contact fields.
Return {"contact": {...}, "content": {...}}.`

func (pb *PromptBuilder) BuildImportPrompt(text string) (string, string) {
	return importSystem, fmt.Sprintf("RESUME TEXT:\n%s", text)
}

func numbered(items []string) string {
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, item))
	}
	return strings.Join(lines, "\n")
}

func toJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func compactJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
