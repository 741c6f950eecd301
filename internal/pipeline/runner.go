package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"ai-resume-analyst/pkg/log"
)

// Ingester 导入一份简历，由 Processor 实现。
type Ingester interface {
	Ingest(ctx context.Context, doc Document) (*Result, error)
}

// FileError 记录单个文件的失败原因。
type FileError struct {
	Path string
	Err  error
}

// Report 汇总一次批量导入。
type Report struct {
	Found     int
	Succeeded int
	Chunks    int
	Failed    []FileError
}

// Runner 扫描源目录并逐个导入文件，进度写到 out 供操作员查看。
type Runner struct {
	ingester        Ingester
	sourceDir       string
	patterns        []string
	continueOnError bool
	out             io.Writer
}

// NewRunner 创建批量导入器。continueOnError 为 false 时遇到第一个失败文件即停止。
func NewRunner(ingester Ingester, sourceDir string, patterns []string, continueOnError bool, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{
		ingester:        ingester,
		sourceDir:       sourceDir,
		patterns:        patterns,
		continueOnError: continueOnError,
		out:             out,
	}
}

// Run 顺序处理源目录下所有匹配的文件。每个文件独立提交，失败不会回滚已完成的文件。
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	files, err := DiscoverFiles(r.sourceDir, r.patterns)
	if err != nil {
		return nil, err
	}
	report := &Report{Found: len(files)}
	fmt.Fprintf(r.out, "Found %d resumes\n", len(files))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := r.IngestFile(ctx, path)
		if err != nil {
			report.Failed = append(report.Failed, FileError{Path: path, Err: err})
			if !r.continueOnError {
				return report, err
			}
			continue
		}
		report.Succeeded++
		report.Chunks += res.Chunks
	}
	log.Infof("[Runner] 批量导入完成, found: %d, succeeded: %d, failed: %d", report.Found, report.Succeeded, len(report.Failed))
	return report, nil
}

// IngestFile 读取并导入单个文件。
func (r *Runner) IngestFile(ctx context.Context, path string) (*Result, error) {
	fmt.Fprintf(r.out, "\n>>> Processing: %s\n", path)
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(r.out, "Failed: %v\n", err)
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	res, err := r.ingester.Ingest(ctx, Document{FilePath: path, Content: content, Source: SourceCLI})
	if err != nil {
		fmt.Fprintf(r.out, "Failed: %v\n", err)
		return nil, err
	}
	fmt.Fprintf(r.out, "Inserted %d chunks for %s\n", res.Chunks, res.Employee.Name)
	return res, nil
}
