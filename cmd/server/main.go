// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"support-bot-go/internal/config"
	"support-bot-go/internal/handler"
	"support-bot-go/internal/middleware"
	"support-bot-go/internal/model"
	"support-bot-go/internal/repository"
	"support-bot-go/internal/service"
	"support-bot-go/pkg/database"
	"support-bot-go/pkg/kafka"
	"support-bot-go/pkg/llm"
	"support-bot-go/pkg/log"
	"support-bot-go/pkg/storage"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库与缓存
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	if err := database.DB.AutoMigrate(&model.Message{}); err != nil {
		log.Fatal("conversations 表迁移失败", err)
	}

	// 4. 可选外部依赖：对象存储的知识库来源、Kafka 事件上报
	if cfg.FAQ.Source == "minio" {
		storage.InitMinIO(cfg.MinIO)
	}
	kafka.InitProducer(cfg.Kafka)

	// 5. 初始化 Repository 与 Service（依赖注入）
	conversationRepo := repository.NewConversationRepository(database.DB, database.RDB)
	llmClient := llm.NewClient(cfg.LLM)
	escalationService := service.NewEscalationService(cfg.Escalation.Keywords)
	faqService := service.NewFAQService(cfg.FAQ, cfg.MinIO)
	generativeService := service.NewGenerativeService(cfg.LLM, llmClient)
	conversationService := service.NewConversationService(conversationRepo)
	chatService := service.NewChatService(
		escalationService,
		faqService,
		generativeService,
		conversationRepo,
		cfg.LLM.SystemPrompt,
		cfg.Escalation.HandoffMessage,
	)
	log.Infof("知识库就绪, 当前条目数: %d", faqService.EntryCount())

	// 6. 设置 Gin 模式并注册路由
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), middleware.CORS(), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.File("./web/test.html")
	})
	r.POST("/chat", handler.NewChatHandler(chatService).Chat)
	r.GET("/history", handler.NewConversationHandler(conversationService).GetHistory)
	r.POST("/clear_history", handler.NewConversationHandler(conversationService).ClearHistory)
	r.POST("/reload_faq", handler.NewFAQHandler(faqService).Reload)

	// 7. 启动 HTTP 服务器并实现优雅停机
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
