package agent

import (
	"context"
	"fmt"
	"strings"

	"ai-resume-analyst/pkg/calendar"
	"ai-resume-analyst/pkg/llm"
)

// generateAnswer 根据处理节点的结果渲染最终答案，每次只走一条路径。
func (a *Agent) generateAnswer(ctx context.Context, state *State) (string, error) {
	switch out := state.Outcome.(type) {
	case AvailabilityOutcome:
		return renderAvailability(out.Calendar.Availability), nil
	case TalentGapOutcome:
		return "Talent Gap Analysis:\n\n" + out.Analysis, nil
	case SummaryOutcome:
		return renderSummaries(out.Summaries), nil
	default:
		resumeData := strings.Join(state.RetrievedChunks, "\n\n")
		answer, err := a.llm.Complete(ctx, fmt.Sprintf(answerPrompt, state.Query, resumeData), llm.WithTemperature(answerTemperature))
		if err != nil {
			return "", fmt.Errorf("generate answer: %w", err)
		}
		return answer, nil
	}
}

func renderAvailability(avail calendar.Availability) string {
	lines := []string{"Here's the availability information:\n"}
	for _, slot := range avail.Slots {
		lines = append(lines, fmt.Sprintf("• %s: %s", slot, strings.Join(avail.NextSevenDays[slot], ", ")))
	}
	return strings.Join(lines, "\n")
}

func renderSummaries(summaries []ResumeSummary) string {
	if len(summaries) == 0 {
		return noResumesMessage
	}
	var b strings.Builder
	b.WriteString("Resume Summaries:")
	for _, s := range summaries {
		name := s.Employee.Name
		if name == "" {
			name = "Unknown"
		}
		summary := s.Summary
		if summary == "" {
			summary = "No summary available"
		}
		fmt.Fprintf(&b, "\n\n**%s**\n%s", name, summary)
	}
	return b.String()
}
