package repository

import (
	"context"
	"fmt"

	"ai-resume-analyst/internal/model"
	"ai-resume-analyst/pkg/es"
	"ai-resume-analyst/pkg/log"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// VectorIndex 是分块向量的近邻检索后端，命中按简历聚合。
type VectorIndex interface {
	// NearestResumes 返回每份简历最佳分块的余弦距离，升序，最多 topK 条。
	NearestResumes(ctx context.Context, vector []float32, topK int) ([]model.ResumeScore, error)
	// IndexChunks 在简历分块写入数据库后同步到索引。
	IndexChunks(ctx context.Context, resume *model.Resume) error
	// DeleteResume 从索引中移除一份简历的全部分块。
	DeleteResume(ctx context.Context, resumeID uint) error
}

// nearestResumesSQL 对每份简历取分块距离的最小值。
const nearestResumesSQL = `
SELECT rc.resume_id AS resume_id, MIN(rc.embedding <=> ?) AS score
FROM resume_chunks rc
GROUP BY rc.resume_id
ORDER BY score ASC, rc.resume_id ASC
LIMIT ?`

type pgvectorIndex struct {
	db *gorm.DB
}

// NewPgvectorIndex 使用 resume_chunks 表上的 pgvector `<=>` 运算符检索。
func NewPgvectorIndex(db *gorm.DB) VectorIndex {
	return &pgvectorIndex{db: db}
}

func (p *pgvectorIndex) NearestResumes(ctx context.Context, vector []float32, topK int) ([]model.ResumeScore, error) {
	var scores []model.ResumeScore
	err := p.db.WithContext(ctx).
		Raw(nearestResumesSQL, pgvector.NewVector(vector), topK).
		Scan(&scores).Error
	if err != nil {
		return nil, fmt.Errorf("pgvector nearest query: %w", err)
	}
	return scores, nil
}

// IndexChunks 分块已随导入事务写入 resume_chunks，无需额外同步。
func (p *pgvectorIndex) IndexChunks(context.Context, *model.Resume) error { return nil }

// DeleteResume 分块随 resumes 外键级联删除。
func (p *pgvectorIndex) DeleteResume(context.Context, uint) error { return nil }

// knnSearchFunc 执行一次分块 kNN 检索。
type knnSearchFunc func(ctx context.Context, indexName string, vector []float32, k int) ([]es.KnnHit, error)

type esIndex struct {
	indexName string
	search    knnSearchFunc
}

// NewElasticsearchIndex 使用 Elasticsearch dense_vector kNN 检索，数据库仍是分块的权威存储。
func NewElasticsearchIndex(indexName string) VectorIndex {
	return &esIndex{indexName: indexName, search: es.KnnSearch}
}

const (
	// knnOversample 每份简历可能命中多个分块，kNN 需要多取一些再聚合。
	knnOversample = 20
	// knnMaxK 是 ES 单次 kNN 允许的最大 k (index.max_result_window)。
	knnMaxK = 10000
)

// NearestResumes 若命中的分块聚合后不足 topK 份简历，则扩大 k 重新检索，
// 直到凑满 topK 份或分块已经取尽。
func (e *esIndex) NearestResumes(ctx context.Context, vector []float32, topK int) ([]model.ResumeScore, error) {
	k := min(topK*knnOversample, knnMaxK)
	for {
		hits, err := e.search(ctx, e.indexName, vector, k)
		if err != nil {
			return nil, err
		}
		scores := es.GroupByResume(hits, topK)
		if len(scores) >= topK || len(hits) < k || k >= knnMaxK {
			return scores, nil
		}
		log.Debugf("[VectorIndex] kNN 命中 %d 个分块仅覆盖 %d 份简历, 扩大 k=%d 重新检索", len(hits), len(scores), k)
		k = min(k*4, knnMaxK)
	}
}

func (e *esIndex) IndexChunks(ctx context.Context, resume *model.Resume) error {
	if err := es.DeleteByResume(ctx, e.indexName, resume.ID); err != nil {
		return err
	}
	for i, c := range resume.Chunks {
		doc := model.EsChunkDocument{
			VectorID:      fmt.Sprintf("%d_%d", resume.ID, i),
			ResumeID:      resume.ID,
			ChunkIndex:    i,
			EmployeeEmail: resume.EmployeeEmail,
			TextContent:   c.ChunkText,
			Vector:        c.Embedding.Slice(),
		}
		if m, ok := c.MetaData["embedding_model"].(string); ok {
			doc.ModelVersion = m
		}
		if err := es.IndexChunk(ctx, e.indexName, doc); err != nil {
			return fmt.Errorf("index chunk %d of resume %d: %w", i, resume.ID, err)
		}
	}
	return nil
}

func (e *esIndex) DeleteResume(ctx context.Context, resumeID uint) error {
	return es.DeleteByResume(ctx, e.indexName, resumeID)
}
