package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"ai-resume-analyst/internal/model"
	"ai-resume-analyst/internal/repository"

	"gorm.io/gorm"
)

type stubEmbedder struct {
	err   error
	texts []string
}

func (s *stubEmbedder) CreateEmbedding(_ context.Context, text string) ([]float32, error) {
	s.texts = append(s.texts, text)
	if s.err != nil {
		return nil, s.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (s *stubEmbedder) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := s.CreateEmbedding(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *stubEmbedder) Model() string { return "stub" }

// stubIndex 模拟按简历聚合后的近邻结果：按分数升序并截断。
type stubIndex struct {
	scores  []model.ResumeScore
	err     error
	deleted []uint
	lastK   int
}

func (s *stubIndex) NearestResumes(_ context.Context, _ []float32, topK int) ([]model.ResumeScore, error) {
	s.lastK = topK
	if s.err != nil {
		return nil, s.err
	}
	out := append([]model.ResumeScore(nil), s.scores...)
	sort.Slice(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (s *stubIndex) IndexChunks(context.Context, *model.Resume) error { return nil }

func (s *stubIndex) DeleteResume(_ context.Context, id uint) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type mapResumeRepo struct {
	resumes map[uint]model.Resume
	deleted []uint
}

func (m *mapResumeRepo) SaveIngested(context.Context, repository.IngestRecord) (*model.Resume, error) {
	return nil, errors.New("not implemented")
}

func (m *mapResumeRepo) FindByID(_ context.Context, id uint) (*model.Resume, error) {
	r, ok := m.resumes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (m *mapResumeRepo) FindByIDs(_ context.Context, ids []uint) ([]model.Resume, error) {
	var out []model.Resume
	for _, id := range ids {
		if r, ok := m.resumes[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mapResumeRepo) List(context.Context) ([]model.Resume, error) {
	out := make([]model.Resume, 0, len(m.resumes))
	for _, r := range m.resumes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mapResumeRepo) Delete(_ context.Context, id uint) error {
	delete(m.resumes, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mapResumeRepo) CountChunks(context.Context, uint) (int64, error) { return 0, nil }

type stubEmployeeRepo struct {
	employees []model.Employee
}

func (s *stubEmployeeRepo) List(context.Context) ([]model.Employee, error) { return s.employees, nil }

func (s *stubEmployeeRepo) FindByEmail(_ context.Context, email string) (*model.Employee, error) {
	for _, e := range s.employees {
		if e.Email == email {
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type memStore struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
	removed []string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Put(_ context.Context, name string, r io.Reader, _ int64, contentType string) error {
	if m.putErr != nil {
		return m.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[name] = b
	m.types[name] = contentType
	return nil
}

func (m *memStore) Get(_ context.Context, name string) (io.ReadCloser, error) {
	b, ok := m.objects[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memStore) Remove(_ context.Context, name string) error {
	m.removed = append(m.removed, name)
	delete(m.objects, name)
	return nil
}

func (m *memStore) PresignedURL(_ context.Context, name string, _ time.Duration) (string, error) {
	return "https://minio.local/" + name + "?sig=x", nil
}

type memConversationRepo struct {
	history map[string][]model.ChatMessage
}

func (m *memConversationRepo) GetConversationHistory(_ context.Context, id string) ([]model.ChatMessage, error) {
	return append([]model.ChatMessage{}, m.history[id]...), nil
}

func (m *memConversationRepo) UpdateConversationHistory(_ context.Context, id string, msgs []model.ChatMessage) error {
	m.history[id] = repository.TrimHistory(msgs)
	return nil
}

func resume(id uint, email, name, path, text string) model.Resume {
	return model.Resume{
		ID:            id,
		EmployeeEmail: email,
		FilePath:      path,
		TextMD:        text,
		Employee:      model.Employee{ID: id, Email: email, Name: name, Role: "Engineer"},
	}
}
