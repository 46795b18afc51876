package services

// JSON Schemas the model output is validated against before it is decoded.
// Optional text fields accept null because several providers emit null for "unknown".

const resumeContentDef = `{
  "type": "object",
  "required": ["work_experience", "education", "skills", "projects"],
  "properties": {
    "target_role": {"type": ["string", "null"]},
    "work_experience": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["company", "position", "description"],
        "properties": {
          "company": {"type": "string"},
          "position": {"type": "string"},
          "location": {"type": ["string", "null"]},
          "date": {"type": ["string", "null"]},
          "description": {"type": "array", "items": {"type": "string"}},
          "technologies": {"type": ["array", "null"], "items": {"type": "string"}}
        }
      }
    },
    "education": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["school", "degree"],
        "properties": {
          "school": {"type": "string"},
          "degree": {"type": "string"},
          "field": {"type": ["string", "null"]},
          "location": {"type": ["string", "null"]},
          "date": {"type": ["string", "null"]},
          "gpa": {"type": ["string", "null"]},
          "achievements": {"type": ["array", "null"], "items": {"type": "string"}}
        }
      }
    },
    "skills": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["category", "items"],
        "properties": {
          "category": {"type": "string"},
          "items": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "projects": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "description"],
        "properties": {
          "name": {"type": "string"},
          "description": {"type": "array", "items": {"type": "string"}},
          "date": {"type": ["string", "null"]},
          "technologies": {"type": ["array", "null"], "items": {"type": "string"}},
          "url": {"type": ["string", "null"]},
          "github_url": {"type": ["string", "null"]}
        }
      }
    }
  }
}`

var tailoredResumeSchema = mustSchema("tailored_resume", `{
  "type": "object",
  "required": ["content"],
  "properties": {"content": `+resumeContentDef+`}
}`)

var jobListingSchema = mustSchema("job_listing", `{
  "type": "object",
  "required": ["content"],
  "properties": {
    "content": {
      "type": "object",
      "required": ["company_name", "position_title", "description"],
      "properties": {
        "company_name": {"type": "string"},
        "position_title": {"type": "string"},
        "job_url": {"type": ["string", "null"]},
        "description": {"type": "string"},
        "location": {"type": ["string", "null"]},
        "salary_range": {"type": ["string", "null"]},
        "keywords": {"type": ["array", "null"], "items": {"type": "string"}},
        "requirements": {"type": ["array", "null"], "items": {"type": "string"}},
        "work_location": {"enum": ["remote", "in_person", "hybrid", "", null]},
        "employment_type": {"enum": ["full_time", "part_time", "co_op", "internship", "", null]}
      }
    }
  }
}`)

const scoreDetailDef = `{
  "type": "object",
  "required": ["score", "reason"],
  "properties": {
    "score": {"type": "number", "minimum": 0, "maximum": 100},
    "reason": {"type": "string"}
  }
}`

var resumeScoreSchema = mustSchema("resume_score", `{
  "type": "object",
  "required": ["overallScore", "completeness", "impactScore", "roleMatch", "miscellaneous", "isTailoredResume"],
  "properties": {
    "overallScore": `+scoreDetailDef+`,
    "completeness": {
      "type": "object",
      "required": ["contactInformation", "detailLevel"],
      "properties": {"contactInformation": `+scoreDetailDef+`, "detailLevel": `+scoreDetailDef+`}
    },
    "impactScore": {
      "type": "object",
      "required": ["activeVoiceUsage", "quantifiedAchievements"],
      "properties": {"activeVoiceUsage": `+scoreDetailDef+`, "quantifiedAchievements": `+scoreDetailDef+`}
    },
    "roleMatch": {
      "type": "object",
      "required": ["skillsRelevance", "experienceAlignment", "educationFit"],
      "properties": {
        "skillsRelevance": `+scoreDetailDef+`,
        "experienceAlignment": `+scoreDetailDef+`,
        "educationFit": `+scoreDetailDef+`
      }
    },
    "jobAlignment": {
      "type": ["object", "null"],
      "required": ["keywordMatch", "requirementsMatch", "companyFit"],
      "properties": {
        "keywordMatch": {"type": "object", "required": ["score", "reason"]},
        "requirementsMatch": {"type": "object", "required": ["score", "reason"]},
        "companyFit": {"type": "object", "required": ["score", "reason"]}
      }
    },
    "miscellaneous": {"type": "object", "additionalProperties": `+scoreDetailDef+`},
    "overallImprovements": {"type": "array", "items": {"type": "string"}},
    "jobSpecificImprovements": {"type": "array", "items": {"type": "string"}},
    "isTailoredResume": {"type": "boolean"}
  }
}`)

var optimizedResumeSchema = mustSchema("optimized_resume", `{
  "type": "object",
  "required": ["content", "changes_made"],
  "properties": {
    "content": `+resumeContentDef+`,
    "changes_made": {"type": "array", "items": {"type": "string"}}
  }
}`)

var coverLetterSchema = mustSchema("cover_letter", `{
  "type": "object",
  "required": ["content"],
  "properties": {"content": {"type": "string", "minLength": 1}}
}`)

var chatEditSchema = mustSchema("chat_edit", `{
  "type": "object",
  "required": ["content", "message", "changes_applied"],
  "properties": {
    "content": `+resumeContentDef+`,
    "message": {"type": "string"},
    "changes_applied": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["section", "description"],
        "properties": {"section": {"type": "string"}, "description": {"type": "string"}}
      }
    }
  }
}`)

var importedResumeSchema = mustSchema("imported_resume", `{
  "type": "object",
  "required": ["contact", "content"],
  "properties": {
    "contact": {
      "type": "object",
      "properties": {
        "first_name": {"type": ["string", "null"]},
        "last_name": {"type": ["string", "null"]},
        "email": {"type": ["string", "null"]},
        "phone_number": {"type": ["string", "null"]},
        "location": {"type": ["string", "null"]},
        "website": {"type": ["string", "null"]},
        "linkedin_url": {"type": ["string", "null"]},
        "github_url": {"type": ["string", "null"]}
      }
    },
    "content": `+resumeContentDef+`
  }
}`)
