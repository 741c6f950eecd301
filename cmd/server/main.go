// Package main 是 HTTP 服务的入口点。
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-resume-analyst/internal/agent"
	"ai-resume-analyst/internal/config"
	"ai-resume-analyst/internal/handler"
	"ai-resume-analyst/internal/middleware"
	"ai-resume-analyst/internal/pipeline"
	"ai-resume-analyst/internal/repository"
	"ai-resume-analyst/internal/service"
	"ai-resume-analyst/pkg/calendar"
	"ai-resume-analyst/pkg/database"
	"ai-resume-analyst/pkg/embedding"
	"ai-resume-analyst/pkg/es"
	"ai-resume-analyst/pkg/kafka"
	"ai-resume-analyst/pkg/llm"
	"ai-resume-analyst/pkg/log"
	"ai-resume-analyst/pkg/storage"
	"ai-resume-analyst/pkg/tika"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 1. 初始化配置
	config.Init(*configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis、对象存储与消息队列
	database.InitPostgres(cfg.Database.Postgres)
	database.InitRedis(cfg.Database.Redis)
	storage.InitMinIO(cfg.MinIO)
	kafka.InitProducer(cfg.Kafka)
	defer kafka.Close()

	var vectorIndex repository.VectorIndex
	switch cfg.Search.Backend {
	case "elasticsearch":
		if err := es.InitES(cfg.Elasticsearch, cfg.Embedding.Dimensions); err != nil {
			log.Fatalf("es 初始化失败 %s", err)
		}
		vectorIndex = repository.NewElasticsearchIndex(cfg.Elasticsearch.IndexName)
	default:
		vectorIndex = repository.NewPgvectorIndex(database.DB)
	}
	log.Infof("向量检索后端: %s", cfg.Search.Backend)

	// 4. 初始化 Repository
	employeeRepo := repository.NewEmployeeRepository(database.DB)
	resumeRepo := repository.NewResumeRepository(database.DB)
	conversationRepo := repository.NewConversationRepository(database.RDB)

	// 5. 初始化外部客户端
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tikaClient := tika.NewClient(cfg.Tika)
	embeddingClient := embedding.NewClient(cfg.Embedding)
	llmClient := llm.NewClient(cfg.LLM)
	calendarClient, err := calendar.NewClient(rootCtx, cfg.Calendar)
	if err != nil {
		log.Fatalf("日历客户端初始化失败: %v", err)
	}
	resumeStore := storage.NewStore(cfg.MinIO.BucketName)

	// 6. 初始化 Service 与 Agent (依赖注入)
	searchService := service.NewSearchService(embeddingClient, vectorIndex, resumeRepo, cfg.Search.DefaultTopK)
	hrAgent := agent.New(llmClient, searchService, calendarClient, cfg.Agent.TopK)
	conversationService := service.NewConversationService(conversationRepo)
	chatService := service.NewChatService(hrAgent, conversationService)
	resumeService := service.NewResumeService(resumeRepo, employeeRepo, vectorIndex, resumeStore)
	uploadService := service.NewUploadService(resumeStore, kafka.ProduceResumeTask)
	log.Infof("Agent 图结构:\n%s", agent.Mermaid())

	// 7. 初始化导入管道并启动后台 Kafka 消费者
	identity, err := pipeline.NewIdentityResolver(cfg.Ingestion.Manifest, cfg.Ingestion.DefaultEmailDomain)
	if err != nil {
		log.Fatalf("加载员工清单失败: %v", err)
	}
	processor := pipeline.NewProcessor(
		tikaClient,
		pipeline.NewSplitter(cfg.Ingestion.ChunkSize, cfg.Ingestion.ChunkOverlap),
		embeddingClient,
		cfg.Embedding.Dimensions,
		identity,
		resumeRepo,
		vectorIndex,
		resumeStore,
	)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		kafka.StartConsumer(rootCtx, cfg.Kafka, processor, database.RDB)
	}()

	// 8. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 9. 注册路由
	r.GET("/health", handler.Health)
	r.GET("/ws/chat", handler.NewChatHandler(chatService).Handle)

	searchHandler := handler.NewSearchHandler(searchService, hrAgent)
	resumeHandler := handler.NewResumeHandler(resumeService)
	apiV1 := r.Group("/api/v1")
	{
		search := apiV1.Group("/search")
		{
			search.POST("/semantic", searchHandler.SemanticSearch)
			search.POST("/rag-agent", searchHandler.RagAgent)
		}

		resumes := apiV1.Group("/resumes")
		{
			resumes.POST("", handler.NewUploadHandler(uploadService).UploadResume)
			resumes.GET("", resumeHandler.ListResumes)
			resumes.GET("/:id/download", resumeHandler.GenerateDownloadURL)
			resumes.DELETE("/:id", resumeHandler.DeleteResume)
		}
		apiV1.GET("/employees", resumeHandler.ListEmployees)

		apiV1.GET("/chat/:sessionId/history", handler.NewConversationHandler(conversationService).GetConversation)
		apiV1.GET("/agent/graph", handler.NewAgentHandler(agent.Mermaid).Graph)
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	// 停止 Kafka 消费者，等待当前任务结束
	cancel()
	select {
	case <-consumerDone:
	case <-ctx.Done():
		log.Warnf("等待 Kafka 消费者退出超时")
	}
	log.Info("服务已优雅关闭")
}
