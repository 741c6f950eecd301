package agent

import "strings"

// Intent 是查询意图的封闭集合。
type Intent string

const (
	IntentResumeSearch      Intent = "resume_search"
	IntentResumeSummary     Intent = "resume_summary"
	IntentAvailabilityCheck Intent = "availability_check"
	IntentGeneralHRQuery    Intent = "general_hr_query"
	IntentTalentGapAnalysis Intent = "talent_gap_analysis"
	// IntentUnknown 表示模型返回了集合之外的标签，按默认分支处理。
	IntentUnknown Intent = "unknown"
)

// Intents 列出分类器可以返回的全部标签，顺序与提示词一致。
var Intents = []Intent{
	IntentResumeSearch,
	IntentResumeSummary,
	IntentAvailabilityCheck,
	IntentGeneralHRQuery,
	IntentTalentGapAnalysis,
}

// ParseIntent 规范化模型输出：去掉空白、引号与反引号并转小写，不在集合中的返回 IntentUnknown。
func ParseIntent(raw string) Intent {
	s := strings.ToLower(strings.Trim(strings.TrimSpace(raw), "\"'`. \n\t"))
	for _, in := range Intents {
		if s == string(in) {
			return in
		}
	}
	return IntentUnknown
}
