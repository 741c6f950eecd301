package agent

import (
	"ai-resume-analyst/internal/model"
	"ai-resume-analyst/pkg/calendar"
)

// State 是单次查询在图中流转的工作状态，每次调用新建，不做持久化。
type State struct {
	SessionID       string
	Query           string
	Intent          Intent
	RetrievedChunks []string
	Resumes         []model.SearchResult
	// Outcome 由处理节点产生，决定答案生成走哪条路径。
	Outcome Outcome
	Answer  string
}

// Outcome 是处理节点的结果，取值只能是下面四种之一。
type Outcome interface {
	outcome()
}

// AvailabilityOutcome 携带日历查询的原始结构化结果。
type AvailabilityOutcome struct {
	Calendar calendar.Result
}

// TalentGapOutcome 携带人才差距分析文本与固定的建议。
type TalentGapOutcome struct {
	Analysis       string `json:"analysis"`
	Recommendation string `json:"recommendation"`
}

// ResumeSummary 是一位候选人的简历摘要。
type ResumeSummary struct {
	Employee model.EmployeeRef `json:"employee"`
	Summary  string            `json:"summary"`
}

// SummaryOutcome 是按候选人顺序排列的摘要列表，可以为空。
type SummaryOutcome struct {
	Summaries []ResumeSummary `json:"resume_summaries"`
}

// PlainOutcome 表示检索或通用问答，答案由 LLM 基于检索到的文本生成。
type PlainOutcome struct{}

func (AvailabilityOutcome) outcome() {}
func (TalentGapOutcome) outcome()    {}
func (SummaryOutcome) outcome()      {}
func (PlainOutcome) outcome()        {}
