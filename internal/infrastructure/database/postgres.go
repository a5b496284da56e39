package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
)

// PostgreSQLClient PostgreSQL直接接続クライアント
type PostgreSQLClient struct {
	DB *sql.DB
}

// NewPostgreSQLClient 新しいPostgreSQLクライアントを作成
// dsn が空の場合は Supabase のURLとパスワードから接続文字列を組み立てる
func NewPostgreSQLClient(dsn, supabaseURL, supabasePassword string) (*PostgreSQLClient, error) {
	if dsn == "" {
		built, err := supabaseDSN(supabaseURL, supabasePassword)
		if err != nil {
			return nil, err
		}
		dsn = built
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("PostgreSQL接続の初期化に失敗: %w", err)
	}

	// 接続テスト
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("PostgreSQLへの接続に失敗: %w", err)
	}

	return &PostgreSQLClient{
		DB: db,
	}, nil
}

// supabaseDSN SupabaseのURLからPostgreSQL接続文字列を構築（ポート6543を使用）
func supabaseDSN(supabaseURL, password string) (string, error) {
	if supabaseURL == "" {
		return "", fmt.Errorf("DATABASE_URLまたはSUPABASE_URL環境変数が設定されていません")
	}
	if password == "" {
		return "", fmt.Errorf("SUPABASE_DB_PASSWORD環境変数が設定されていません")
	}

	// https://xxx.supabase.co -> xxx.supabase.co
	host := strings.TrimPrefix(strings.TrimPrefix(supabaseURL, "https://"), "http://")
	host = strings.TrimSuffix(host, "/")

	return fmt.Sprintf(
		"host=db.%s port=6543 user=postgres password=%s dbname=postgres sslmode=require",
		host, password,
	), nil
}

// Close データベース接続を閉じる
func (pc *PostgreSQLClient) Close() error {
	if pc.DB != nil {
		return pc.DB.Close()
	}
	return nil
}

// HealthCheck データベース接続のヘルスチェック
func (pc *PostgreSQLClient) HealthCheck(ctx context.Context) error {
	if pc.DB == nil {
		return fmt.Errorf("PostgreSQLクライアントが初期化されていません")
	}
	return pc.DB.PingContext(ctx)
}
