package main

import (
	"fmt"

	"ai-resume-analyst/internal/config"
	"ai-resume-analyst/internal/pipeline"
	"ai-resume-analyst/internal/repository"
	"ai-resume-analyst/pkg/database"
	"ai-resume-analyst/pkg/embedding"
	"ai-resume-analyst/pkg/es"
	"ai-resume-analyst/pkg/log"
	"ai-resume-analyst/pkg/tika"

	"github.com/spf13/cobra"
)

var (
	configPath string
	sourceDir  string
)

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest resumes into the resume analyst database",
	Long: `Scans the configured source directory for PDF, DOCX and Markdown resumes,
extracts their text, splits it into overlapping chunks, embeds every chunk and
stores employees, resumes and chunk vectors. Re-running is idempotent per
(employee email, file path).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./configs/config.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&sourceDir, "source-dir", "", "override ingestion.source_dir")
}

// newRunner 组装子命令使用的 Runner，测试中可替换。
var newRunner = buildRunner

// buildRunner 加载配置并组装导入管道，server 与 ingest 共享同一套 Processor。
func buildRunner(cmd *cobra.Command) (*pipeline.Runner, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	if sourceDir != "" {
		cfg.Ingestion.SourceDir = sourceDir
	}

	db, err := database.OpenPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}

	var index repository.VectorIndex
	switch cfg.Search.Backend {
	case "elasticsearch":
		if err := es.InitES(cfg.Elasticsearch, cfg.Embedding.Dimensions); err != nil {
			return nil, fmt.Errorf("初始化 Elasticsearch 失败: %w", err)
		}
		index = repository.NewElasticsearchIndex(cfg.Elasticsearch.IndexName)
	default:
		index = repository.NewPgvectorIndex(db)
	}

	identity, err := pipeline.NewIdentityResolver(cfg.Ingestion.Manifest, cfg.Ingestion.DefaultEmailDomain)
	if err != nil {
		return nil, err
	}

	processor := pipeline.NewProcessor(
		tika.NewClient(cfg.Tika),
		pipeline.NewSplitter(cfg.Ingestion.ChunkSize, cfg.Ingestion.ChunkOverlap),
		embedding.NewClient(cfg.Embedding),
		cfg.Embedding.Dimensions,
		identity,
		repository.NewResumeRepository(db),
		index,
		nil,
	)
	return pipeline.NewRunner(
		processor,
		cfg.Ingestion.SourceDir,
		cfg.Ingestion.Patterns,
		cfg.Ingestion.ContinueOnError,
		cmd.OutOrStdout(),
	), nil
}
