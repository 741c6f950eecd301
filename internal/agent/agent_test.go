package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"ai-resume-analyst/internal/model"
	"ai-resume-analyst/pkg/calendar"
	"ai-resume-analyst/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type llmCall struct {
	prompt      string
	temperature *float64
}

// scriptedLLM 根据提示词类型返回预设内容。
type scriptedLLM struct {
	mu        sync.Mutex
	intent    string
	summaries map[string]string
	answer    string
	gap       string
	failOn    string
	calls     []llmCall
}

func (s *scriptedLLM) Chat(ctx context.Context, messages []llm.Message, gen *llm.GenerationParams) (string, error) {
	return s.Complete(ctx, messages[len(messages)-1].Content, gen)
}

func (s *scriptedLLM) Complete(_ context.Context, prompt string, gen *llm.GenerationParams) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	call := llmCall{prompt: prompt}
	if gen != nil {
		call.temperature = gen.Temperature
	}
	s.calls = append(s.calls, call)
	if s.failOn != "" && strings.Contains(prompt, s.failOn) {
		return "", errors.New("upstream 503")
	}
	switch {
	case strings.Contains(prompt, "Classify the user query"):
		return s.intent, nil
	case strings.Contains(prompt, "Summarize the following resume"):
		for key, summary := range s.summaries {
			if strings.Contains(prompt, key) {
				return summary, nil
			}
		}
		return "", nil
	case strings.Contains(prompt, "You are an HR strategist"):
		return s.gap, nil
	default:
		return s.answer, nil
	}
}

func (s *scriptedLLM) callsContaining(marker string) []llmCall {
	var out []llmCall
	for _, c := range s.calls {
		if strings.Contains(c.prompt, marker) {
			out = append(out, c)
		}
	}
	return out
}

type fakeSearcher struct {
	results []model.SearchResult
	err     error
	calls   int
	lastK   int
}

func (f *fakeSearcher) Search(_ context.Context, _ string, topK int) ([]model.SearchResult, error) {
	f.calls++
	f.lastK = topK
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > topK {
		return f.results[:topK], nil
	}
	return f.results, nil
}

type fakeCalendar struct {
	ids    []string
	result calendar.Result
	err    error
}

func (f *fakeCalendar) Availability(_ context.Context, ids []string) (calendar.Result, error) {
	f.ids = ids
	return f.result, f.err
}

func candidates() []model.SearchResult {
	return []model.SearchResult{
		{ResumeID: 1, Score: 0.12, Employee: model.EmployeeRef{ID: 1, Name: "Alice", Role: "DevOps", Email: "alice@corp.io"}, ResumeText: "ALICE: Terraform, Kubernetes"},
		{ResumeID: 2, Score: 0.25, Employee: model.EmployeeRef{ID: 2, Name: "Bob", Role: "DevOps", Email: "bob@corp.io"}, ResumeText: "BOB: Ansible, AWS"},
	}
}

func temp(c llmCall) float64 {
	if c.temperature == nil {
		return -1
	}
	return *c.temperature
}

func TestInvoke_ResumeSearchUsesPlainAnswerPath(t *testing.T) {
	fl := &scriptedLLM{intent: "resume_search", answer: `{"answer":"Alice fits"}`}
	fs := &fakeSearcher{results: candidates()}
	a := New(fl, fs, &fakeCalendar{}, 5)

	state, err := a.Invoke(context.Background(), "Find me a senior backend engineer")

	require.NoError(t, err)
	assert.Equal(t, IntentResumeSearch, state.Intent)
	assert.IsType(t, PlainOutcome{}, state.Outcome)
	assert.Equal(t, `{"answer":"Alice fits"}`, state.Answer)
	assert.Equal(t, 5, fs.lastK)

	answerCalls := fl.callsContaining("You are an HR intelligence agent")
	require.Len(t, answerCalls, 1)
	assert.Contains(t, answerCalls[0].prompt, "Find me a senior backend engineer")
	assert.Contains(t, answerCalls[0].prompt, "ALICE: Terraform, Kubernetes\n\nBOB: Ansible, AWS")
	assert.InDelta(t, 0.2, temp(answerCalls[0]), 1e-9)
	assert.InDelta(t, 0.0, temp(fl.callsContaining("Classify the user query")[0]), 1e-9)
}

func TestInvoke_SummaryRendersEachCandidate(t *testing.T) {
	fl := &scriptedLLM{
		intent:    "resume_summary",
		summaries: map[string]string{"ALICE": "Cloud infra expert.", "BOB": "Automation focused."},
	}
	a := New(fl, &fakeSearcher{results: candidates()}, &fakeCalendar{}, 5)

	state, err := a.Invoke(context.Background(), "Summarize candidate resumes for DevOps role")

	require.NoError(t, err)
	assert.Equal(t, "Resume Summaries:\n\n**Alice**\nCloud infra expert.\n\n**Bob**\nAutomation focused.", state.Answer)
	out, ok := state.Outcome.(SummaryOutcome)
	require.True(t, ok)
	require.Len(t, out.Summaries, 2)
	assert.Equal(t, "Alice", out.Summaries[0].Employee.Name)
	assert.Empty(t, fl.callsContaining("You are an HR intelligence agent"))
}

func TestInvoke_SummaryWithNoCandidatesReturnsFixedMessage(t *testing.T) {
	fl := &scriptedLLM{intent: "resume_summary", answer: "hallucinated"}
	a := New(fl, &fakeSearcher{}, &fakeCalendar{}, 5)

	state, err := a.Invoke(context.Background(), "Summarize resumes for a quantum chef")

	require.NoError(t, err)
	assert.Equal(t, noResumesMessage, state.Answer)
	assert.Empty(t, fl.callsContaining("Summarize the following resume"))
	assert.Empty(t, fl.callsContaining("You are an HR intelligence agent"))
}

func TestInvoke_SummaryMissingFieldsUseDefaults(t *testing.T) {
	fl := &scriptedLLM{intent: "resume_summary", summaries: map[string]string{}}
	results := []model.SearchResult{{ResumeID: 9, ResumeText: "anonymous"}}
	a := New(fl, &fakeSearcher{results: results}, &fakeCalendar{}, 5)

	state, err := a.Invoke(context.Background(), "summarize")

	require.NoError(t, err)
	assert.Equal(t, "Resume Summaries:\n\n**Unknown**\nNo summary available", state.Answer)
}

func TestInvoke_AvailabilityRendersSlotsInOrder(t *testing.T) {
	fl := &scriptedLLM{intent: "availability_check"}
	cal := &fakeCalendar{result: calendar.Result{Availability: calendar.Availability{
		Slots: []string{"morning", "afternoon"},
		NextSevenDays: map[string][]string{
			"morning":   {"Mon Jun 2", "Tue Jun 3"},
			"afternoon": {"Wed Jun 4"},
		},
	}}}
	results := append(candidates(), model.SearchResult{ResumeID: 3, Employee: model.EmployeeRef{Name: "Alice", Email: "alice@corp.io"}})
	a := New(fl, &fakeSearcher{results: results}, cal, 5)

	state, err := a.Invoke(context.Background(), "When are the DevOps candidates available?")

	require.NoError(t, err)
	assert.Equal(t, "Here's the availability information:\n\n• morning: Mon Jun 2, Tue Jun 3\n• afternoon: Wed Jun 4", state.Answer)
	assert.Equal(t, []string{"alice@corp.io", "bob@corp.io"}, cal.ids)
	assert.Empty(t, fl.callsContaining("You are an HR intelligence agent"))
}

func TestInvoke_TalentGapPrefixesAnalysis(t *testing.T) {
	fl := &scriptedLLM{intent: "talent_gap_analysis", gap: "Missing: Go, gRPC"}
	a := New(fl, &fakeSearcher{results: candidates()}, &fakeCalendar{}, 5)

	state, err := a.Invoke(context.Background(), "What skills are we missing for a platform team?")

	require.NoError(t, err)
	assert.Equal(t, "Talent Gap Analysis:\n\nMissing: Go, gRPC", state.Answer)
	out, ok := state.Outcome.(TalentGapOutcome)
	require.True(t, ok)
	assert.Equal(t, "Consider hiring or upskilling", out.Recommendation)

	gapCalls := fl.callsContaining("You are an HR strategist")
	require.Len(t, gapCalls, 1)
	assert.Contains(t, gapCalls[0].prompt, "ALICE: Terraform, Kubernetes\n\nBOB: Ansible, AWS")
}

func TestInvoke_UnknownAndGeneralIntentsRouteToRAG(t *testing.T) {
	for _, raw := range []string{"general_hr_query", "something_else", "  `RESUME_SEARCH`\n"} {
		fl := &scriptedLLM{intent: raw, answer: "ok"}
		fs := &fakeSearcher{results: candidates()}
		a := New(fl, fs, &fakeCalendar{}, 3)

		state, err := a.Invoke(context.Background(), "tell me about our engineers")

		require.NoError(t, err, raw)
		assert.Equal(t, "ok", state.Answer, raw)
		assert.Equal(t, 1, fs.calls, raw)
		assert.IsType(t, PlainOutcome{}, state.Outcome, raw)
	}
}

func TestInvoke_SearchFailureAbortsRequest(t *testing.T) {
	fl := &scriptedLLM{intent: "resume_search"}
	a := New(fl, &fakeSearcher{err: errors.New("embedding api down")}, &fakeCalendar{}, 5)

	_, err := a.Invoke(context.Background(), "find gophers")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rag")
	assert.Contains(t, err.Error(), "embedding api down")
}

func TestInvoke_ClassifierFailureAbortsRequest(t *testing.T) {
	fl := &scriptedLLM{failOn: "Classify the user query"}
	fs := &fakeSearcher{}
	a := New(fl, fs, &fakeCalendar{}, 5)

	_, err := a.Invoke(context.Background(), "anything")

	require.Error(t, err)
	assert.Equal(t, 0, fs.calls)
}

func TestInvoke_EmptyQuery(t *testing.T) {
	a := New(&scriptedLLM{}, &fakeSearcher{}, &fakeCalendar{}, 5)
	_, err := a.Invoke(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestInvoke_EachRequestGetsFreshState(t *testing.T) {
	fl := &scriptedLLM{intent: "resume_search", answer: "a"}
	a := New(fl, &fakeSearcher{results: candidates()}, &fakeCalendar{}, 5)

	s1, err := a.Invoke(context.Background(), "q1")
	require.NoError(t, err)
	s2, err := a.Invoke(context.Background(), "q2")
	require.NoError(t, err)

	assert.NotEqual(t, s1.SessionID, s2.SessionID)
	assert.Equal(t, "q2", s2.Query)
	assert.Len(t, s2.RetrievedChunks, 2)
}
