package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Config 定義 Redis 連線配置
type Config struct {
	Addr     string // Redis 伺服器地址 (e.g., "localhost:6379")
	Password string // Redis 密碼 (若無則留空)
	DB       int    // 使用的資料庫編號
}

// Client 封裝 redis.Client 以提供更簡易的介面
type Client struct {
	rdb *redis.Client
}

// Tx 與 Pipeliner 讓呼叫端不必直接 import go-redis
type (
	Tx        = redis.Tx
	Pipeliner = redis.Pipeliner
)

// ErrTxFailed 表示 WATCH 的 key 在交易期間被修改
var ErrTxFailed = redis.TxFailedErr

// NewClient 建立並回傳一個新的 Redis 客戶端實例
//
// 參數:
//
//	cfg: Config - Redis 連線配置資訊
//
// 回傳值:
//
//	*Client: 封裝後的 Redis 客戶端實例
//	error: 若連線失敗則回傳錯誤
func NewClient(cfg Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 測試連線
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close 關閉 Redis 連線
func (c *Client) Close() error {
	return c.rdb.Close()
}

// IsNil 判斷錯誤是否為 key 不存在
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

// HGet 讀取 hash 中的單一欄位
//
// 回傳值:
//
//	string: 欄位值
//	bool: 欄位是否存在
//	error: Redis 系統錯誤
func (c *Client) HGet(ctx context.Context, key, field string) (string, bool, error) {
	val, err := c.rdb.HGet(ctx, key, field).Result()
	if IsNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// HGetAll 讀取整個 hash；key 不存在時回傳空 map
func (c *Client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return c.rdb.HGetAll(ctx, key).Result()
}

// HSet 寫入 hash 中的單一欄位
func (c *Client) HSet(ctx context.Context, key, field, value string) error {
	return c.rdb.HSet(ctx, key, field, value).Err()
}

// HDel 刪除 hash 中的欄位；欄位不存在時不視為錯誤
func (c *Client) HDel(ctx context.Context, key string, fields ...string) error {
	return c.rdb.HDel(ctx, key, fields...).Err()
}

// Watch 以 WATCH/MULTI/EXEC 執行樂觀鎖交易。
// 被 WATCH 的 key 在 fn 執行期間被修改時回傳 ErrTxFailed，由呼叫端決定是否重試。
//
// 參數:
//
//	ctx: context.Context - 上下文
//	fn: func(*Tx) error - 交易內容，寫入需透過 tx.TxPipelined
//	keys: ...string - 要監看的 key
func (c *Client) Watch(ctx context.Context, fn func(*Tx) error, keys ...string) error {
	return c.rdb.Watch(ctx, fn, keys...)
}
