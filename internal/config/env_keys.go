package config

// Environment Variable Keys
const (
	// EnvAppEnv 定義應用程式執行環境 (local, dev, prod)
	EnvAppEnv = "APP_ENV"

	// EnvLogLevel 定義 log 等級 (debug, info, warn, error)
	EnvLogLevel = "LOG_LEVEL"

	// EnvStoreBackend 定義文件資料庫後端 (firestore, redis, mysql, memory)
	EnvStoreBackend = "STORE_BACKEND"

	// EnvFirebaseCredentials 定義 service account JSON 原文
	EnvFirebaseCredentials = "FIREBASE_CREDENTIALS"

	// EnvFirebaseCredentialsFile 定義 service account JSON 檔案路徑
	EnvFirebaseCredentialsFile = "FIREBASE_CREDENTIALS_FILE"

	// EnvFirebaseProjectID 定義 GCP 專案 ID
	EnvFirebaseProjectID = "FIREBASE_PROJECT_ID"

	// EnvRedisAddr 定義 Redis 服務地址 (host:port)
	EnvRedisAddr = "REDIS_ADDR"

	// EnvRedisPassword 定義 Redis 密碼
	EnvRedisPassword = "REDIS_PASSWORD"

	// EnvRedisDB 定義 Redis 資料庫編號
	EnvRedisDB = "REDIS_DB"

	// EnvMySQLHost 定義 MySQL 主機
	EnvMySQLHost = "MYSQL_HOST"

	// EnvMySQLUser 定義 MySQL 使用者
	EnvMySQLUser = "MYSQL_USER"

	// EnvMySQLDB 定義 MySQL 資料庫名稱
	EnvMySQLDB = "MYSQL_DB"

	// EnvMySQLPort 定義 MySQL Port
	EnvMySQLPort = "MYSQL_PORT"

	// EnvMySQLPassword 定義 MySQL 密碼
	EnvMySQLPassword = "MYSQL_PASSWORD"
)
