// Package pipeline 定义了简历导入的核心流程：提取文本、切块、向量化、写入数据库与向量索引。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"ai-resume-analyst/internal/model"
	"ai-resume-analyst/internal/repository"
	"ai-resume-analyst/pkg/embedding"
	"ai-resume-analyst/pkg/log"
	"ai-resume-analyst/pkg/tasks"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// ErrEmptyText 表示文档没有可导入的文本。
var ErrEmptyText = errors.New("document has no extractable text")

// Source 标记分块的来源。
const (
	SourceCLI    = "cli"
	SourceUpload = "upload"
)

// Document 是一份待导入的简历。FilePath 与员工邮箱一起作为幂等键。
type Document struct {
	FilePath string
	Content  []byte
	Source   string
	// Employee 非空时直接使用，否则由 IdentityResolver 推断。
	Employee *model.Employee
}

// Result 是单份简历导入的结果。
type Result struct {
	ResumeID uint
	Employee model.Employee
	Chunks   int
}

// ObjectReader 读取对象存储中的简历原件。
type ObjectReader interface {
	Get(ctx context.Context, objectName string) (io.ReadCloser, error)
}

// Processor 封装了简历导入的所有依赖和逻辑。
type Processor struct {
	extractor       Extractor
	splitter        *Splitter
	embeddingClient embedding.Client
	dimensions      int
	identity        *IdentityResolver
	resumeRepo      repository.ResumeRepository
	index           repository.VectorIndex
	objects         ObjectReader
}

// NewProcessor 创建一个新的 Processor 实例。dimensions 为 0 时不校验向量维度，objects 只在处理 Kafka 任务时需要。
func NewProcessor(
	extractor Extractor,
	splitter *Splitter,
	embeddingClient embedding.Client,
	dimensions int,
	identity *IdentityResolver,
	resumeRepo repository.ResumeRepository,
	index repository.VectorIndex,
	objects ObjectReader,
) *Processor {
	return &Processor{
		extractor:       extractor,
		splitter:        splitter,
		embeddingClient: embeddingClient,
		dimensions:      dimensions,
		identity:        identity,
		resumeRepo:      resumeRepo,
		index:           index,
		objects:         objects,
	}
}

// Ingest 导入一份简历。重复导入同一 (邮箱, 文件路径) 时原地更新简历并替换全部分块。
func (p *Processor) Ingest(ctx context.Context, doc Document) (*Result, error) {
	fileName := filepath.Base(doc.FilePath)
	log.Infof("[Processor] 开始处理简历, FilePath: %s, Source: %s", doc.FilePath, doc.Source)

	// 1. 提取文本
	text, err := textFromDocument(ctx, p.extractor, fileName, doc.Content)
	if err != nil {
		log.Errorf("[Processor] 提取文本失败, FilePath: %s, Error: %v", doc.FilePath, err)
		return nil, fmt.Errorf("extract %s: %w", fileName, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		log.Warnf("[Processor] 提取的文本内容为空, 处理中止, FilePath: %s", doc.FilePath)
		return nil, fmt.Errorf("%s: %w", fileName, ErrEmptyText)
	}
	log.Infof("[Processor] 步骤1: 文本提取成功, 内容长度: %d 字符", utf8.RuneCountInString(text))

	// 2. 确定员工身份
	var employee model.Employee
	if doc.Employee != nil && doc.Employee.Email != "" {
		employee = *doc.Employee
		employee.Email = strings.ToLower(strings.TrimSpace(employee.Email))
		if employee.Name == "" {
			employee.Name = fileStem(fileName)
		}
	} else {
		employee = p.identity.Resolve(fileName, text)
	}
	log.Infof("[Processor] 步骤2: 员工身份: %s <%s>", employee.Name, employee.Email)

	// 3. 文本切块
	chunks := p.splitter.Split(text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%s: %w", fileName, ErrEmptyText)
	}
	log.Infof("[Processor] 步骤3: 文本分块完成, chunkSize: %d, chunkOverlap: %d, 共 %d 个分块",
		p.splitter.ChunkSize, p.splitter.ChunkOverlap, len(chunks))

	// 4. 向量化，全部成功后才写库
	vectors, err := p.embeddingClient.CreateEmbeddings(ctx, chunks)
	if err != nil {
		log.Errorf("[Processor] 分块向量化失败, FilePath: %s, Error: %v", doc.FilePath, err)
		return nil, fmt.Errorf("embed chunks of %s: %w", fileName, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embed chunks of %s: got %d vectors for %d chunks", fileName, len(vectors), len(chunks))
	}
	records := make([]model.ResumeChunk, len(chunks))
	for i, c := range chunks {
		if p.dimensions > 0 && len(vectors[i]) != p.dimensions {
			return nil, fmt.Errorf("embed chunks of %s: vector dimension %d, expected %d", fileName, len(vectors[i]), p.dimensions)
		}
		records[i] = model.ResumeChunk{
			ChunkText: c,
			Embedding: pgvector.NewVector(vectors[i]),
			MetaData: datatypes.JSONMap{
				"source":          doc.Source,
				"chunk_index":     i,
				"embedding_model": p.embeddingClient.Model(),
			},
		}
	}
	log.Infof("[Processor] 步骤4: 向量化成功, 共 %d 个向量", len(vectors))

	// 5. 单事务写入员工、简历与分块
	resume, err := p.resumeRepo.SaveIngested(ctx, repository.IngestRecord{
		Employee: employee,
		FilePath: doc.FilePath,
		Text:     text,
		Chunks:   records,
	})
	if err != nil {
		log.Errorf("[Processor] 写入数据库失败, FilePath: %s, Error: %v", doc.FilePath, err)
		return nil, fmt.Errorf("save %s: %w", fileName, err)
	}
	log.Infof("[Processor] 步骤5: 写入数据库成功, ResumeID: %d", resume.ID)

	// 6. 同步向量索引
	if err := p.index.IndexChunks(ctx, resume); err != nil {
		log.Errorf("[Processor] 同步向量索引失败, ResumeID: %d, Error: %v", resume.ID, err)
		return nil, fmt.Errorf("index resume %d: %w", resume.ID, err)
	}

	log.Infof("[Processor] 简历处理成功完成, FilePath: %s, ResumeID: %d", doc.FilePath, resume.ID)
	return &Result{ResumeID: resume.ID, Employee: resume.Employee, Chunks: len(records)}, nil
}

// ProcessTask 处理一个 Kafka 导入任务：从 MinIO 下载原件后导入。
func (p *Processor) ProcessTask(ctx context.Context, task tasks.ResumeIngestTask) error {
	if p.objects == nil {
		return errors.New("object storage not configured")
	}
	log.Infof("[Processor] 从MinIO下载文件, Object: %s", task.ObjectName)
	object, err := p.objects.Get(ctx, task.ObjectName)
	if err != nil {
		return err
	}
	defer object.Close()

	content, err := io.ReadAll(object)
	if err != nil {
		return fmt.Errorf("读取MinIO对象流失败: %w", err)
	}
	if len(content) == 0 {
		return fmt.Errorf("%s: %w", task.ObjectName, ErrEmptyText)
	}

	doc := Document{FilePath: task.ObjectName, Content: content, Source: SourceUpload}
	if task.Email != "" {
		emp := model.Employee{Email: task.Email, Name: task.Name, Role: task.Role}
		if task.EmployeeID != "" {
			id := task.EmployeeID
			emp.EmployeeID = &id
		}
		doc.Employee = &emp
	}
	_, err = p.Ingest(ctx, doc)
	return err
}
