package agent

const intentPrompt = `
Classify the user query into one of the following intents:
- resume_search
- resume_summary
- availability_check
- general_hr_query
- talent_gap_analysis

Return only the intent string.
Query: %s
`

const answerPrompt = `
You are an HR intelligence agent.

Use the following resume data to answer the query.
Be factual. If unsure, say so.

Query:
%s

Resume Data:
%s

Return a structured JSON with:
- answer
- candidates
- actions_suggested
`

const summaryPrompt = `
Summarize the following resume focusing on:
- Key skills
- Experience level
- Best-fit roles

Resume:
%s
`

const talentGapPrompt = `
You are an HR strategist.

Given the resumes and the role requirement below, identify:
- Missing skills
- Weak areas
- Hiring recommendations

Role Requirement:
%s

Resumes:
%s
`

const (
	noResumesMessage        = "No resumes found matching your query. Please try a different search or check if resumes have been ingested into the system."
	talentGapRecommendation = "Consider hiring or upskilling"
)

const (
	classifierTemperature = 0.0
	toolTemperature       = 0.0
	answerTemperature     = 0.2
)
