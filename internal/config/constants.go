// internal/config/constants.go
package config

import "time"

// アプリケーション情報
const (
	AppName    = "learn-progress"
	AppVersion = "0.1.0"
)

// デフォルト設定値
const (
	DefaultServerPort     = ":8080"
	DefaultDatabaseDriver = "postgres"
	DefaultLogLevel       = "info"
	DefaultAuthEnabled    = false
	DefaultCacheTTL       = 5 * time.Minute
)
