package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"ai-resume-analyst/internal/model"
	"ai-resume-analyst/internal/repository"
)

type fakeEmbedder struct {
	dims  int
	err   error
	calls int
}

func (f *fakeEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	v, err := f.CreateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

func (f *fakeEmbedder) CreateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, f.dims)
		for j := range v {
			v[j] = float32(i + 1)
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Model() string { return "fake-embedding" }

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) ExtractText(_ context.Context, r io.Reader, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.text != "" {
		return f.text, nil
	}
	b, err := io.ReadAll(r)
	return string(b), err
}

// memResumeRepo 在内存中模拟 (email, file_path) upsert 与分块整体替换。
type memResumeRepo struct {
	mu        sync.Mutex
	nextID    uint
	employees map[string]model.Employee
	resumes   map[uint]*model.Resume
	saveErr   error
}

func newMemResumeRepo() *memResumeRepo {
	return &memResumeRepo{employees: map[string]model.Employee{}, resumes: map[uint]*model.Resume{}}
}

func (m *memResumeRepo) SaveIngested(_ context.Context, rec repository.IngestRecord) (*model.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	emp, ok := m.employees[rec.Employee.Email]
	if !ok {
		emp = rec.Employee
		emp.ID = uint(len(m.employees) + 1)
	} else if emp.EmployeeID == nil {
		emp.EmployeeID = rec.Employee.EmployeeID
	}
	m.employees[emp.Email] = emp

	var target *model.Resume
	for _, r := range m.resumes {
		if r.EmployeeEmail == emp.Email && r.FilePath == rec.FilePath {
			target = r
		}
	}
	if target == nil {
		m.nextID++
		target = &model.Resume{ID: m.nextID, EmployeeEmail: emp.Email, FilePath: rec.FilePath}
		m.resumes[target.ID] = target
	}
	target.TextMD = rec.Text
	target.Employee = emp
	target.Chunks = nil
	for _, c := range rec.Chunks {
		c.ResumeID = target.ID
		target.Chunks = append(target.Chunks, c)
	}
	cp := *target
	return &cp, nil
}

func (m *memResumeRepo) FindByID(_ context.Context, id uint) (*model.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resumes[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cp := *r
	return &cp, nil
}

func (m *memResumeRepo) FindByIDs(ctx context.Context, ids []uint) ([]model.Resume, error) {
	var out []model.Resume
	for _, id := range ids {
		if r, err := m.FindByID(ctx, id); err == nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memResumeRepo) List(context.Context) ([]model.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Resume, 0, len(m.resumes))
	for _, r := range m.resumes {
		out = append(out, *r)
	}
	return out, nil
}

func (m *memResumeRepo) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.resumes, id)
	return nil
}

func (m *memResumeRepo) CountChunks(_ context.Context, resumeID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.resumes[resumeID]; ok {
		return int64(len(r.Chunks)), nil
	}
	return 0, nil
}

type recordingIndex struct {
	indexed []uint
	err     error
}

func (r *recordingIndex) NearestResumes(context.Context, []float32, int) ([]model.ResumeScore, error) {
	return nil, nil
}

func (r *recordingIndex) IndexChunks(_ context.Context, resume *model.Resume) error {
	if r.err != nil {
		return r.err
	}
	r.indexed = append(r.indexed, resume.ID)
	return nil
}

func (r *recordingIndex) DeleteResume(context.Context, uint) error { return nil }

type memObjects map[string]string

func (m memObjects) Get(_ context.Context, name string) (io.ReadCloser, error) {
	s, ok := m[name]
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(strings.NewReader(s)), nil
}
