package di

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/JoeShih716/case-common/internal/app/docstore"
	"github.com/JoeShih716/case-common/internal/config"
	"github.com/JoeShih716/case-common/internal/core/ports"
	"github.com/JoeShih716/case-common/internal/infrastructure/persistence/firestore"
	"github.com/JoeShih716/case-common/internal/infrastructure/persistence/memory"
	"github.com/JoeShih716/case-common/internal/infrastructure/persistence/mysql"
	infraRedis "github.com/JoeShih716/case-common/internal/infrastructure/persistence/redis"
	mysqlpkg "github.com/JoeShih716/case-common/pkg/mysql"
	pkgRedis "github.com/JoeShih716/case-common/pkg/redis"
)

// StoreProvider 持有整個 process 共用的文件資料庫連線。
// 第一次 Provide 時依設定建立連線，之後的呼叫回傳同一個 handle。
type StoreProvider struct {
	cfg    *config.Config
	logger *slog.Logger

	mu    sync.Mutex
	store ports.DocumentStore
}

// NewStoreProvider 建立 provider；不會立即連線
func NewStoreProvider(cfg *config.Config, logger *slog.Logger) *StoreProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreProvider{cfg: cfg, logger: logger}
}

// Provide 回傳共用的 DocumentStore；已初始化時不會重新連線。
// 連線失敗時不保留狀態，下一次呼叫會再嘗試。
func (p *StoreProvider) Provide(ctx context.Context) (ports.DocumentStore, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.store != nil {
		return p.store, nil
	}
	store, err := OpenStore(ctx, p.cfg)
	if err != nil {
		return nil, err
	}
	p.logger.Info("document store connected", "backend", p.cfg.Store.Backend)
	p.store = store
	return store, nil
}

// ProvideService 以共用連線建立存取層
func (p *StoreProvider) ProvideService(ctx context.Context) (*docstore.Service, error) {
	store, err := p.Provide(ctx)
	if err != nil {
		return nil, err
	}
	return docstore.NewService(store, p.logger), nil
}

// Close 關閉共用連線；尚未連線時不做任何事
func (p *StoreProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.store == nil {
		return nil
	}
	err := p.store.Close()
	p.store = nil
	return err
}

// OpenStore 依 cfg.Store.Backend 建立對應的 DocumentStore
func OpenStore(ctx context.Context, cfg *config.Config) (ports.DocumentStore, error) {
	switch cfg.Store.Backend {
	case config.BackendFirestore:
		return firestore.NewStore(ctx, firestore.Config{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsJSON: cfg.Firebase.Credentials,
			CredentialsFile: cfg.Firebase.CredentialsFile,
		})
	case config.BackendRedis:
		client, err := pkgRedis.NewClient(pkgRedis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return infraRedis.NewStore(client), nil
	case config.BackendMySQL:
		client, err := mysqlpkg.NewClient(mysqlpkg.Config{
			Host:     cfg.MySQL.Host,
			Port:     cfg.MySQL.Port,
			User:     cfg.MySQL.User,
			Password: cfg.MySQL.Password,
			DBName:   cfg.MySQL.DBName,
		})
		if err != nil {
			return nil, err
		}
		repo, err := mysql.NewDocumentRepository(client)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return repo, nil
	case config.BackendMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
