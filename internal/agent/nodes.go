package agent

import (
	"context"
	"fmt"
	"strings"

	"ai-resume-analyst/pkg/llm"
	"ai-resume-analyst/pkg/log"
)

// ragSearch 检索候选简历并展开其全文，供答案生成使用。
func (a *Agent) ragSearch(ctx context.Context, state *State) error {
	if err := a.search(ctx, state); err != nil {
		return err
	}
	state.Outcome = PlainOutcome{}
	return nil
}

func (a *Agent) search(ctx context.Context, state *State) error {
	results, err := a.searcher.Search(ctx, state.Query, a.topK)
	if err != nil {
		return err
	}
	state.Resumes = results
	state.RetrievedChunks = state.RetrievedChunks[:0]
	for _, r := range results {
		if r.ResumeText != "" {
			state.RetrievedChunks = append(state.RetrievedChunks, r.ResumeText)
		}
	}
	log.Infof("[Agent] 检索到 %d 份候选简历, session: %s", len(results), state.SessionID)
	return nil
}

// ensureCandidates 在候选列表为空时先执行一次检索。
func (a *Agent) ensureCandidates(ctx context.Context, state *State) error {
	if len(state.Resumes) > 0 {
		return nil
	}
	return a.search(ctx, state)
}

// createSummary 为每位候选人生成一段摘要，候选为空时产生空列表。
func (a *Agent) createSummary(ctx context.Context, state *State) error {
	if err := a.ensureCandidates(ctx, state); err != nil {
		return err
	}
	summaries := make([]ResumeSummary, 0, len(state.Resumes))
	for _, r := range state.Resumes {
		text, err := a.llm.Complete(ctx, fmt.Sprintf(summaryPrompt, r.ResumeText), llm.WithTemperature(toolTemperature))
		if err != nil {
			return fmt.Errorf("summarize resume %d: %w", r.ResumeID, err)
		}
		summaries = append(summaries, ResumeSummary{Employee: r.Employee, Summary: text})
	}
	state.Outcome = SummaryOutcome{Summaries: summaries}
	return nil
}

// checkAvailability 以候选人邮箱作为日历 ID 查询未来 7 天的共同空闲时段。
func (a *Agent) checkAvailability(ctx context.Context, state *State) error {
	if err := a.ensureCandidates(ctx, state); err != nil {
		return err
	}
	seen := make(map[string]struct{})
	ids := make([]string, 0, len(state.Resumes))
	for _, r := range state.Resumes {
		email := r.Employee.Email
		if email == "" {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		ids = append(ids, email)
	}
	result, err := a.calendar.Availability(ctx, ids)
	if err != nil {
		return err
	}
	state.Outcome = AvailabilityOutcome{Calendar: result}
	return nil
}

// generateTalentGap 把所有候选简历作为上下文，分析缺失技能与招聘建议。
func (a *Agent) generateTalentGap(ctx context.Context, state *State) error {
	if err := a.ensureCandidates(ctx, state); err != nil {
		return err
	}
	texts := make([]string, 0, len(state.Resumes))
	for _, r := range state.Resumes {
		texts = append(texts, r.ResumeText)
	}
	prompt := fmt.Sprintf(talentGapPrompt, state.Query, strings.Join(texts, "\n\n"))
	analysis, err := a.llm.Complete(ctx, prompt, llm.WithTemperature(toolTemperature))
	if err != nil {
		return fmt.Errorf("talent gap analysis: %w", err)
	}
	state.Outcome = TalentGapOutcome{Analysis: analysis, Recommendation: talentGapRecommendation}
	return nil
}
