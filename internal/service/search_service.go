// Package service 提供了语义检索相关的业务逻辑。
package service

import (
	"context"
	"fmt"

	"ai-resume-analyst/internal/model"
	"ai-resume-analyst/internal/repository"
	"ai-resume-analyst/pkg/embedding"
	"ai-resume-analyst/pkg/log"
)

// SearchService 接口定义了语义检索操作。
type SearchService interface {
	// Search 返回与查询最相近的简历，按距离升序，最多 topK 份。
	Search(ctx context.Context, query string, topK int) ([]model.SearchResult, error)
}

type searchService struct {
	embeddingClient embedding.Client
	index           repository.VectorIndex
	resumeRepo      repository.ResumeRepository
	defaultTopK     int
}

// NewSearchService 创建一个新的 SearchService 实例。
func NewSearchService(embeddingClient embedding.Client, index repository.VectorIndex, resumeRepo repository.ResumeRepository, defaultTopK int) SearchService {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &searchService{
		embeddingClient: embeddingClient,
		index:           index,
		resumeRepo:      resumeRepo,
		defaultTopK:     defaultTopK,
	}
}

func (s *searchService) Search(ctx context.Context, query string, topK int) ([]model.SearchResult, error) {
	if topK <= 0 {
		topK = s.defaultTopK
	}
	log.Infof("[SearchService] 开始执行语义检索, query: '%s', topK: %d", query, topK)

	// 1. 向量化查询，失败即整体失败
	queryVector, err := s.embeddingClient.CreateEmbedding(ctx, query)
	if err != nil {
		log.Errorf("[SearchService] 向量化查询失败: %v", err)
		return nil, fmt.Errorf("failed to create query embedding: %w", err)
	}

	// 2. 近邻检索，按简历聚合取最小距离
	scores, err := s.index.NearestResumes(ctx, queryVector, topK)
	if err != nil {
		log.Errorf("[SearchService] 向量检索失败: %v", err)
		return nil, fmt.Errorf("failed to query vector index: %w", err)
	}
	if len(scores) == 0 {
		log.Info("[SearchService] 未检索到任何简历")
		return []model.SearchResult{}, nil
	}

	// 3. 批量加载简历与员工，避免 N+1 查询
	ids := make([]uint, 0, len(scores))
	for _, sc := range scores {
		ids = append(ids, sc.ResumeID)
	}
	resumes, err := s.resumeRepo.FindByIDs(ctx, ids)
	if err != nil {
		log.Errorf("[SearchService] 批量查询简历失败: %v", err)
		return nil, fmt.Errorf("failed to load resumes: %w", err)
	}
	byID := make(map[uint]model.Resume, len(resumes))
	for _, r := range resumes {
		byID[r.ID] = r
	}

	// 4. 按距离顺序组装结果，检索后被删除的简历直接跳过
	results := make([]model.SearchResult, 0, len(scores))
	for _, sc := range scores {
		r, ok := byID[sc.ResumeID]
		if !ok {
			log.Warnf("[SearchService] 简历 %d 在索引中存在但数据库中不存在, 跳过", sc.ResumeID)
			continue
		}
		results = append(results, model.SearchResult{
			ResumeID:   r.ID,
			Score:      sc.Score,
			Employee:   r.Employee.Ref(),
			FilePath:   r.FilePath,
			ResumeText: r.TextMD,
		})
		if len(results) == topK {
			break
		}
	}
	log.Infof("[SearchService] 语义检索完成, 返回 %d 条结果", len(results))
	return results, nil
}
