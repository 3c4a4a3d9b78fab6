// internal/model/context.go
package model

// ContextKey はコンテキストのキーに使う型 (他パッケージとの衝突防止)
type ContextKey string

const (
	// LearnerIDKey は認証済み学習者のID (uuid.UUID) を格納するキー
	LearnerIDKey ContextKey = "learnerID"
)
