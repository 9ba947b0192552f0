package bootstrap

import (
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JoeShih716/case-common/internal/config"
)

// App 封裝了應用程式的基礎組件
type App struct {
	Name   string
	Config *config.Config
	Logger *slog.Logger
}

// NewApp 建立一個新的應用程式實例
//
// 1. 初始化 Default Logger
// 2. 載入 Config (config.yaml + Env Override)
// 3. 依環境與 LOG_LEVEL 重新配置 Logger
func NewApp(appName string) *App {
	// 1. 初始化基礎 Logger
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	// 2. 載入設定
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := NewLogger(os.Stdout, cfg.App.Env, cfg.App.LogLevel).With("app", appName)
	slog.SetDefault(logger) // 更新 Default Logger

	return &App{
		Name:   appName,
		Config: cfg,
		Logger: logger,
	}
}

// NewLogger 依環境選擇 handler
// Production -> JSON (Structured Logging)
// Others     -> Text (Readable)
func NewLogger(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	switch env {
	case "production", "prod":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel 將設定值轉為 slog.Level；無法辨識時為 Info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Run 啟動應用程式並等待停止信號
//
// startFunc: 啟動服務的邏輯 (Blocking operation)
// cleanupFunc: 收到停止信號後的清理邏輯
func (a *App) Run(startFunc func() error, cleanupFunc func()) {
	// 背景啟動服務
	go func() {
		a.Logger.Info("Starting service", "env", a.Config.App.Env, "store", a.Config.Store.Backend)
		if err := startFunc(); err != nil {
			a.Logger.Error("Service startup failed", "error", err)
			os.Exit(1)
		}
	}()

	// 等待停止信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.Logger.Info("Shutting down service...")
	if cleanupFunc != nil {
		cleanupFunc()
	}
	a.Logger.Info("Service exited")
}

// RunOnce 執行一次性的工作 (例如 seed)，完成後執行清理；失敗時以非零碼結束
func (a *App) RunOnce(job func() error, cleanupFunc func()) {
	a.Logger.Info("Running job", "env", a.Config.App.Env, "store", a.Config.Store.Backend)
	err := job()
	if cleanupFunc != nil {
		cleanupFunc()
	}
	if err != nil {
		a.Logger.Error("Job failed", "error", err)
		os.Exit(1)
	}
	a.Logger.Info("Job finished")
}
