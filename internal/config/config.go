package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// 支援的文件資料庫後端
const (
	BackendFirestore = "firestore"
	BackendRedis     = "redis"
	BackendMySQL     = "mysql"
	BackendMemory    = "memory"
)

// Config 總配置結構
type Config struct {
	App      AppConfig      `yaml:"app"`
	Store    StoreConfig    `yaml:"store"`
	Firebase FirebaseConfig `yaml:"firebase"`
	Redis    RedisConfig    `yaml:"redis"`
	MySQL    MySQLConfig    `yaml:"mysql"`
}

type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
}

// StoreConfig 選擇文件資料庫後端
type StoreConfig struct {
	Backend string `yaml:"backend"`
}

// FirebaseConfig Firestore 連線設定；Credentials 為 service account JSON 原文，優先於 CredentialsFile
type FirebaseConfig struct {
	ProjectID       string `yaml:"project_id"`
	Credentials     string `yaml:"credentials"`
	CredentialsFile string `yaml:"credentials_file"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// Load 讀取設定檔
// 優先讀取 config/config.yaml，然後使用環境變數覆蓋。
// 檔案不存在時，只有在 STORE_BACKEND 由環境變數提供的情況下才允許 (純 Env 運行模式)。
func Load(configPath ...string) (*Config, error) {
	// 1. 決定設定檔路徑
	dir := "./config"
	if len(configPath) > 0 {
		dir = configPath[0]
	}
	fullPath := filepath.Join(dir, "config.yaml")

	var cfg Config

	// 2. 讀取 YAML 檔案 (如果存在)
	data, err := os.ReadFile(fullPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml at %s: %w", fullPath, err)
		}
	case errors.Is(err, fs.ErrNotExist) && os.Getenv(EnvStoreBackend) != "":
		// 全靠 Env
	default:
		return nil, fmt.Errorf("failed to read config file at %s: %w", fullPath, err)
	}

	// 3. 環境變數覆蓋 (Environment Variable Override)
	overrideWithEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 檢查所選後端的必要設定
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendFirestore:
		if c.Firebase.ProjectID == "" && c.Firebase.Credentials == "" && c.Firebase.CredentialsFile == "" {
			return fmt.Errorf("firestore backend needs %s, %s or %s", EnvFirebaseProjectID, EnvFirebaseCredentials, EnvFirebaseCredentialsFile)
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis backend needs %s", EnvRedisAddr)
		}
	case BackendMySQL:
		if c.MySQL.Host == "" || c.MySQL.DBName == "" {
			return fmt.Errorf("mysql backend needs %s and %s", EnvMySQLHost, EnvMySQLDB)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendFirestore
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.MySQL.Port == 0 {
		cfg.MySQL.Port = 3306
	}
}

func overrideWithEnv(cfg *Config) {
	// App
	if env := os.Getenv(EnvAppEnv); env != "" {
		cfg.App.Env = env
	}
	if val := os.Getenv(EnvLogLevel); val != "" {
		cfg.App.LogLevel = val
	}

	// Store
	if val := os.Getenv(EnvStoreBackend); val != "" {
		cfg.Store.Backend = val
	}

	// Firebase
	if val := os.Getenv(EnvFirebaseCredentials); val != "" {
		cfg.Firebase.Credentials = val
	}
	if val := os.Getenv(EnvFirebaseCredentialsFile); val != "" {
		cfg.Firebase.CredentialsFile = val
	}
	if val := os.Getenv(EnvFirebaseProjectID); val != "" {
		cfg.Firebase.ProjectID = val
	}

	// MySQL
	if val := os.Getenv(EnvMySQLHost); val != "" {
		cfg.MySQL.Host = val
	}
	if val := os.Getenv(EnvMySQLPassword); val != "" {
		cfg.MySQL.Password = val
	}
	if val := os.Getenv(EnvMySQLUser); val != "" {
		cfg.MySQL.User = val
	}
	if val := os.Getenv(EnvMySQLDB); val != "" {
		cfg.MySQL.DBName = val
	}
	if val := os.Getenv(EnvMySQLPort); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.MySQL.Port = p
		}
	}

	// Redis
	if val := os.Getenv(EnvRedisAddr); val != "" {
		cfg.Redis.Addr = val
	}
	if val := os.Getenv(EnvRedisPassword); val != "" {
		cfg.Redis.Password = val
	}
	if val := os.Getenv(EnvRedisDB); val != "" {
		if db, err := strconv.Atoi(val); err == nil {
			cfg.Redis.DB = db
		}
	}
}
