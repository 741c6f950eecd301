// Package es 提供了与 Elasticsearch 交互的客户端功能，作为 pgvector 之外的可选向量检索后端。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"ai-resume-analyst/internal/config"
	"ai-resume-analyst/internal/model"
	"ai-resume-analyst/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ESClient *elasticsearch.Client

// InitES 初始化 Elasticsearch 客户端，并按向量维度创建索引。
func InitES(esCfg config.ElasticsearchConfig, dims int) error {
	cfg := elasticsearch.Config{
		Addresses: []string{esCfg.Addresses},
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return err
	}
	ESClient = client
	return createIndexIfNotExists(esCfg.IndexName, dims)
}

// indexMapping 返回简历分块索引的 mapping，向量使用 cosine 相似度。
func indexMapping(dims int) string {
	return fmt.Sprintf(`{
		"mappings": {
			"properties": {
				"vector_id": { "type": "keyword" },
				"resume_id": { "type": "long" },
				"chunk_index": { "type": "integer" },
				"employee_email": { "type": "keyword" },
				"text_content": { "type": "text" },
				"vector": {
					"type": "dense_vector",
					"dims": %d,
					"index": true,
					"similarity": "cosine"
				},
				"model_version": { "type": "keyword" }
			}
		}
	}`, dims)
}

// createIndexIfNotExists 检查索引是否存在，如果不存在则创建它
func createIndexIfNotExists(indexName string, dims int) error {
	res, err := ESClient.Indices.Exists([]string{indexName})
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	res.Body.Close()
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Errorf("检查索引 '%s' 是否存在时收到意外的状态码: %d", indexName, res.StatusCode)
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	res, err = ESClient.Indices.Create(
		indexName,
		ESClient.Indices.Create.WithBody(strings.NewReader(indexMapping(dims))),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", indexName, err)
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", indexName, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功, 向量维度: %d", indexName, dims)
	return nil
}

// IndexChunk 将单个简历分块索引到 Elasticsearch。
func IndexChunk(ctx context.Context, indexName string, doc model.EsChunkDocument) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: doc.VectorID,
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, ESClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("索引文档到 Elasticsearch 出错: %s", res.String())
		return errors.New("failed to index document")
	}
	return nil
}

// DeleteByResume 删除某份简历的全部分块文档。
func DeleteByResume(ctx context.Context, indexName string, resumeID uint) error {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"resume_id": resumeID},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return err
	}

	res, err := ESClient.DeleteByQuery(
		[]string{indexName},
		&buf,
		ESClient.DeleteByQuery.WithContext(ctx),
		ESClient.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("按简历删除 Elasticsearch 文档出错: %s", res.String())
		return fmt.Errorf("failed to delete chunks of resume %d", resumeID)
	}
	return nil
}

// KnnHit 是 kNN 查询命中的一条分块。
type KnnHit struct {
	ResumeID uint
	Score    float64 // ES cosine 相似度得分，范围 [0, 1]
}

// KnnSearch 对分块向量做 kNN 检索，返回原始命中。
func KnnSearch(ctx context.Context, indexName string, vector []float32, k int) ([]KnnHit, error) {
	numCandidates := k * 2
	if numCandidates > 10000 {
		numCandidates = 10000
	}
	body := map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          "vector",
			"query_vector":   vector,
			"k":              k,
			"num_candidates": numCandidates,
		},
		"_source": []string{"resume_id"},
		"size":    k,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("failed to encode knn query: %w", err)
	}

	res, err := ESClient.Search(
		ESClient.Search.WithContext(ctx),
		ESClient.Search.WithIndex(indexName),
		ESClient.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute knn search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch knn search error: %s", res.String())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Score  float64 `json:"_score"`
				Source struct {
					ResumeID uint `json:"resume_id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode knn response: %w", err)
	}

	hits := make([]KnnHit, 0, len(esResponse.Hits.Hits))
	for _, h := range esResponse.Hits.Hits {
		hits = append(hits, KnnHit{ResumeID: h.Source.ResumeID, Score: h.Score})
	}
	return hits, nil
}

// CosineDistance 把 ES 的 cosine 得分 (1+cos)/2 换算回 pgvector `<=>` 的余弦距离 1-cos。
func CosineDistance(score float64) float64 {
	return 2 - 2*score
}

// GroupByResume 按简历聚合命中，每份简历保留最小距离，升序排列并截断到 topK。
func GroupByResume(hits []KnnHit, topK int) []model.ResumeScore {
	best := make(map[uint]float64)
	for _, h := range hits {
		d := CosineDistance(h.Score)
		if cur, ok := best[h.ResumeID]; !ok || d < cur {
			best[h.ResumeID] = d
		}
	}

	scores := make([]model.ResumeScore, 0, len(best))
	for id, d := range best {
		scores = append(scores, model.ResumeScore{ResumeID: id, Score: d})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score == scores[j].Score {
			return scores[i].ResumeID < scores[j].ResumeID
		}
		return scores[i].Score < scores[j].Score
	})
	if topK > 0 && len(scores) > topK {
		scores = scores[:topK]
	}
	return scores
}
