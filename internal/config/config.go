// Package config 负责加载和管理应用程序的配置。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Log           LogConfig           `mapstructure:"log"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Tika          TikaConfig          `mapstructure:"tika"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Embedding     EmbeddingConfig     `mapstructure:"embedding"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Search        SearchConfig        `mapstructure:"search"`
	Agent         AgentConfig         `mapstructure:"agent"`
	Calendar      CalendarConfig      `mapstructure:"calendar"`
	Ingestion     IngestionConfig     `mapstructure:"ingestion"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig 存储 PostgreSQL（需安装 pgvector 扩展）的配置。
type PostgresConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig 存储 Kafka 相关的配置。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// TikaConfig 存储 Tika 服务器相关的配置。
type TikaConfig struct {
	ServerURL string `mapstructure:"server_url"`
}

// ElasticsearchConfig 存储 Elasticsearch 相关的配置。
type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// MinIOConfig 存储 MinIO 对象存储的配置。
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// EmbeddingConfig 存储 Embedding 模型相关的配置。
type EmbeddingConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
}

// LLMConfig 存储大语言模型相关的配置。
type LLMConfig struct {
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Model      string              `mapstructure:"model"`
	Generation LLMGenerationConfig `mapstructure:"generation"`
}

// LLMGenerationConfig 配置生成相关参数（可选）。
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// SearchConfig 配置语义检索的后端。
// Backend 可选 "pgvector"（默认）或 "elasticsearch"。
type SearchConfig struct {
	Backend     string `mapstructure:"backend"`
	DefaultTopK int    `mapstructure:"default_top_k"`
}

// AgentConfig 配置意图路由 Agent。
type AgentConfig struct {
	TopK int `mapstructure:"top_k"`
}

// CalendarConfig 配置可用性查询使用的日历。
type CalendarConfig struct {
	Provider        string       `mapstructure:"provider"`
	CredentialsFile string       `mapstructure:"credentials_file"`
	Timezone        string       `mapstructure:"timezone"`
	Slots           []SlotConfig `mapstructure:"slots"`
}

// SlotConfig 定义一个时间段桶，StartHour/EndHour 为当地时间的整点。
type SlotConfig struct {
	Name      string `mapstructure:"name"`
	StartHour int    `mapstructure:"start_hour"`
	EndHour   int    `mapstructure:"end_hour"`
}

// IngestionConfig 存储离线导入流程的配置。
type IngestionConfig struct {
	SourceDir          string   `mapstructure:"source_dir"`
	Patterns           []string `mapstructure:"patterns"`
	ChunkSize          int      `mapstructure:"chunk_size"`
	ChunkOverlap       int      `mapstructure:"chunk_overlap"`
	Manifest           string   `mapstructure:"manifest"`
	DefaultEmailDomain string   `mapstructure:"default_email_domain"`
	ContinueOnError    bool     `mapstructure:"continue_on_error"`
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}

// Load 读取 .env（若存在）与 YAML 配置文件，返回解析后的配置。
// 环境变量 RESUME_<SECTION>_<KEY> 可以覆盖文件中的任意键。
func Load(configPath string) (Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("读取 .env 文件失败: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("RESUME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("读取配置文件失败: %w", err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}

	// 与原始系统保持一致：API Key 缺省时回退到 OPENAI_API_KEY
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v.GetString("openai_api_key")
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = cfg.LLM.APIKey
	}
	if len(cfg.Calendar.Slots) == 0 {
		cfg.Calendar.Slots = DefaultSlots()
	}
	return cfg, nil
}

// DefaultSlots 返回默认的三个时间段桶。
func DefaultSlots() []SlotConfig {
	return []SlotConfig{
		{Name: "morning", StartHour: 9, EndHour: 12},
		{Name: "afternoon", StartHour: 13, EndHour: 17},
		{Name: "evening", StartHour: 17, EndHour: 19},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.postgres.max_idle_conns", 10)
	v.SetDefault("database.postgres.max_open_conns", 50)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("kafka.topic", "resume-ingest")
	v.SetDefault("kafka.group_id", "resume-analyst-consumer")
	v.SetDefault("elasticsearch.index_name", "resume_chunks")
	v.SetDefault("minio.bucket_name", "resumes")
	v.SetDefault("embedding.base_url", "https://api.openai.com/v1")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.dimensions", 1536)
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("search.backend", "pgvector")
	v.SetDefault("search.default_top_k", 5)
	v.SetDefault("agent.top_k", 5)
	v.SetDefault("calendar.provider", "static")
	v.SetDefault("calendar.timezone", "UTC")
	v.SetDefault("ingestion.source_dir", "source_files")
	v.SetDefault("ingestion.patterns", []string{"*.pdf", "*.docx", "*.md"})
	v.SetDefault("ingestion.chunk_size", 400)
	v.SetDefault("ingestion.chunk_overlap", 100)
	v.SetDefault("ingestion.default_email_domain", "resumes.local")
	v.SetDefault("ingestion.continue_on_error", true)
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("database.postgres.dsn", "RESUME_DATABASE_POSTGRES_DSN", "DATABASE_URL")
}
