package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrUnsupportedFile 表示文件类型不在可导入范围内。
var ErrUnsupportedFile = errors.New("unsupported file type")

// Extractor 从二进制文档（PDF、DOCX）中提取纯文本。
type Extractor interface {
	ExtractText(ctx context.Context, fileReader io.Reader, fileName string) (string, error)
}

// DiscoverFiles 在 dir 下按 glob 模式（支持 **）查找文件，返回去重并排序后的路径。
func DiscoverFiles(dir string, patterns []string) ([]string, error) {
	fsys := os.DirFS(dir)
	seen := make(map[string]struct{})
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			p := filepath.Join(dir, filepath.FromSlash(m))
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			files = append(files, p)
		}
	}
	sort.Strings(files)
	return files, nil
}

// MatchesSource 判断 path 是否会被 DiscoverFiles(dir, patterns) 选中：模式按相对 dir 的路径匹配。
func MatchesSource(dir string, patterns []string, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// textFromDocument 根据扩展名选择读取方式：Markdown/纯文本直接读取，PDF/DOCX 交给 Extractor。
func textFromDocument(ctx context.Context, extractor Extractor, fileName string, content []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".md", ".markdown", ".txt":
		return string(content), nil
	case ".pdf", ".docx":
		if extractor == nil {
			return "", fmt.Errorf("%w: no extractor configured for %s", ErrUnsupportedFile, fileName)
		}
		return extractor.ExtractText(ctx, bytes.NewReader(content), fileName)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(fileName))
	}
}
