package handler

import (
	"context"
	"errors"
	"io"

	"ai-resume-analyst/internal/agent"
	"ai-resume-analyst/internal/model"
	"ai-resume-analyst/internal/service"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var errBackend = errors.New("backend unavailable: secret-host:5432")

type fakeSearchService struct {
	results   []model.SearchResult
	err       error
	lastQuery string
	lastTopK  int
}

func (f *fakeSearchService) Search(_ context.Context, query string, topK int) ([]model.SearchResult, error) {
	f.lastQuery, f.lastTopK = query, topK
	return f.results, f.err
}

type fakeAgent struct {
	state *agent.State
	err   error
}

func (f *fakeAgent) Invoke(_ context.Context, query string) (*agent.State, error) {
	if query == "" {
		return nil, agent.ErrEmptyQuery
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.state, nil
}

type fakeChatService struct {
	state    *agent.State
	err      error
	sessions []string
	queries  []string
}

func (f *fakeChatService) Ask(_ context.Context, sessionID, query string) (*agent.State, error) {
	f.sessions = append(f.sessions, sessionID)
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.state, nil
}

type fakeConversationService struct {
	history map[string][]model.ChatMessage
	err     error
}

func (f *fakeConversationService) GetConversationHistory(_ context.Context, sessionID string) ([]model.ChatMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.history[sessionID], nil
}

func (f *fakeConversationService) AddExchange(context.Context, string, string, string, string) error {
	return nil
}

type fakeResumeService struct {
	resumes   []service.ResumeDTO
	employees []model.Employee
	download  *service.DownloadInfoDTO
	err       error
	deleted   []uint
}

func (f *fakeResumeService) ListResumes(context.Context) ([]service.ResumeDTO, error) {
	return f.resumes, f.err
}

func (f *fakeResumeService) ListEmployees(context.Context) ([]model.Employee, error) {
	return f.employees, f.err
}

func (f *fakeResumeService) DeleteResume(_ context.Context, id uint) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeResumeService) GenerateDownloadURL(context.Context, uint) (*service.DownloadInfoDTO, error) {
	return f.download, f.err
}

type fakeUploadService struct {
	result *service.UploadResult
	err    error
	req    service.UploadRequest
	body   []byte
}

func (f *fakeUploadService) UploadResume(_ context.Context, req service.UploadRequest) (*service.UploadResult, error) {
	f.req = req
	if req.Reader != nil {
		f.body, _ = io.ReadAll(req.Reader)
	}
	return f.result, f.err
}
