package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/feichai0017/concept-graph/config"
	"github.com/feichai0017/concept-graph/internal/bootstrap"
	"github.com/feichai0017/concept-graph/pkg/logger"
	"github.com/feichai0017/concept-graph/pkg/queue"
	"github.com/feichai0017/concept-graph/pkg/worker"
)

func main() {
	// 初始化日志
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/worker.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// 初始化全部依赖
	app, err := bootstrap.New(log)
	if err != nil {
		log.Error("Failed to initialize application", logger.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	// 创建 worker 配置
	redisCfg := config.GetRedisConfig()
	pipeCfg := config.GetPipelineConfig()
	workerCfg := &worker.Config{
		RedisAddr:     redisCfg.Addr,
		RedisPassword: redisCfg.Password,
		RedisDB:       redisCfg.DB,
		Concurrency:   pipeCfg.WorkerConcurrency,
		Queues:        queue.QueuePriorities,
		RetryBase:     pipeCfg.RetryBase,
	}

	// 创建 worker
	ingestWorker, err := worker.NewIngestWorker(workerCfg, app.Ingestion, log)
	if err != nil {
		log.Error("Failed to create ingest worker", logger.Error(err))
		os.Exit(1)
	}

	// 创建上下文和取消函数
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 启动 worker
	if err := ingestWorker.Start(ctx); err != nil {
		log.Error("Failed to start worker", logger.Error(err))
		os.Exit(1)
	}

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	// 优雅关闭
	log.Info("Shutting down worker...")
	ingestWorker.Stop()
	log.Info("Worker stopped")
}
