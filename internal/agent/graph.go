// Package agent 实现按意图路由的简历问答图：classify_intent → 处理节点 → generate_answer。
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ai-resume-analyst/internal/model"
	"ai-resume-analyst/pkg/calendar"
	"ai-resume-analyst/pkg/llm"
	"ai-resume-analyst/pkg/log"

	"github.com/google/uuid"
)

// ErrEmptyQuery 表示查询为空。
var ErrEmptyQuery = errors.New("query must not be empty")

// Node 是图中的节点名。
type Node string

const (
	NodeClassifyIntent    Node = "classify_intent"
	NodeRAG               Node = "rag"
	NodeCheckAvailability Node = "check_availability"
	NodeCreateSummary     Node = "create_summary"
	NodeGenerateTalentGap Node = "generate_talent_gap"
	NodeGenerateAnswer    Node = "generate_answer"
)

// Searcher 是语义检索服务。
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]model.SearchResult, error)
}

// Agent 持有图中各节点共用的依赖，本身无状态，可以并发调用。
type Agent struct {
	classifier *Classifier
	llm        llm.Client
	searcher   Searcher
	calendar   calendar.Client
	topK       int
}

// New 创建 Agent。topK 为处理节点检索候选简历的数量。
func New(client llm.Client, searcher Searcher, cal calendar.Client, topK int) *Agent {
	if topK <= 0 {
		topK = 5
	}
	return &Agent{
		classifier: NewClassifier(client),
		llm:        client,
		searcher:   searcher,
		calendar:   cal,
		topK:       topK,
	}
}

// Route 把意图映射到处理节点，未列出的意图走默认的 rag 分支。
func Route(intent Intent) Node {
	switch intent {
	case IntentAvailabilityCheck:
		return NodeCheckAvailability
	case IntentResumeSummary:
		return NodeCreateSummary
	case IntentTalentGapAnalysis:
		return NodeGenerateTalentGap
	default:
		return NodeRAG
	}
}

// Invoke 同步执行一次完整的图，任一节点出错即中止并返回错误。
func (a *Agent) Invoke(ctx context.Context, query string) (*State, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	state := &State{SessionID: uuid.NewString(), Query: query}
	log.Infow("[Agent] 开始处理查询", "session", state.SessionID, "query", query)

	intent, err := a.classifier.Classify(ctx, query)
	if err != nil {
		return nil, a.fail(state, NodeClassifyIntent, err)
	}
	state.Intent = intent

	node := Route(intent)
	log.Infow("[Agent] 意图路由", "session", state.SessionID, "intent", intent, "node", node)
	if err := a.runHandler(ctx, node, state); err != nil {
		return nil, a.fail(state, node, err)
	}

	answer, err := a.generateAnswer(ctx, state)
	if err != nil {
		return nil, a.fail(state, NodeGenerateAnswer, err)
	}
	state.Answer = answer
	log.Infow("[Agent] 查询完成", "session", state.SessionID, "intent", intent, "candidates", len(state.Resumes))
	return state, nil
}

func (a *Agent) runHandler(ctx context.Context, node Node, state *State) error {
	switch node {
	case NodeCheckAvailability:
		return a.checkAvailability(ctx, state)
	case NodeCreateSummary:
		return a.createSummary(ctx, state)
	case NodeGenerateTalentGap:
		return a.generateTalentGap(ctx, state)
	default:
		return a.ragSearch(ctx, state)
	}
}

func (a *Agent) fail(state *State, node Node, err error) error {
	log.Errorw("[Agent] 节点执行失败", "session", state.SessionID, "node", node, "error", err)
	return fmt.Errorf("%s: %w", node, err)
}

// Mermaid 以 Mermaid flowchart 描述图结构。
func Mermaid() string {
	var b strings.Builder
	b.WriteString("graph TD;\n")
	b.WriteString("\t__start__([<p>__start__</p>]):::first\n")
	for _, n := range []Node{NodeClassifyIntent, NodeRAG, NodeCheckAvailability, NodeCreateSummary, NodeGenerateTalentGap, NodeGenerateAnswer} {
		fmt.Fprintf(&b, "\t%s(%s)\n", n, n)
	}
	b.WriteString("\t__end__([<p>__end__</p>]):::last\n")
	fmt.Fprintf(&b, "\t__start__ --> %s;\n", NodeClassifyIntent)
	for _, n := range []Node{NodeCheckAvailability, NodeCreateSummary, NodeGenerateTalentGap, NodeRAG} {
		fmt.Fprintf(&b, "\t%s -.-> %s;\n", NodeClassifyIntent, n)
		fmt.Fprintf(&b, "\t%s --> %s;\n", n, NodeGenerateAnswer)
	}
	fmt.Fprintf(&b, "\t%s --> __end__;\n", NodeGenerateAnswer)
	b.WriteString("\tclassDef default fill:#f2f0ff,line-height:1.2\n")
	b.WriteString("\tclassDef first fill-opacity:0\n")
	b.WriteString("\tclassDef last fill:#bfb6fc\n")
	return b.String()
}
