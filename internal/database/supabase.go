package database

import (
	"fmt"
	"log"

	"github.com/supabase-community/supabase-go"
)

// SupabaseClient エクスポート先として使うSupabaseクライアント
type SupabaseClient struct {
	Client *supabase.Client
	url    string
}

// NewSupabaseClient URLとキーからクライアントを作成
func NewSupabaseClient(supabaseURL, supabaseAnonKey string) (*SupabaseClient, error) {
	if supabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL環境変数が設定されていません")
	}
	if supabaseAnonKey == "" {
		return nil, fmt.Errorf("SUPABASE_ANON_KEY環境変数が設定されていません")
	}

	client, err := supabase.NewClient(supabaseURL, supabaseAnonKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("Supabaseクライアントの初期化に失敗: %w", err)
	}

	return &SupabaseClient{
		Client: client,
		url:    supabaseURL,
	}, nil
}

// Upsert rows を table に conflictColumn をキーとして書き込む
func (sc *SupabaseClient) Upsert(table, conflictColumn string, rows interface{}) error {
	if sc.Client == nil {
		return fmt.Errorf("Supabaseクライアントが初期化されていません")
	}
	_, _, err := sc.Client.From(table).Insert(rows, true, conflictColumn, "minimal", "").Execute()
	if err != nil {
		return fmt.Errorf("%sへのアップサートに失敗: %w", table, err)
	}
	return nil
}

// HealthCheck クライアントの初期化確認
func (sc *SupabaseClient) HealthCheck() error {
	if sc.Client == nil {
		return fmt.Errorf("Supabaseクライアントが初期化されていません")
	}
	log.Printf("✅ Supabase export sink ready: %s", sc.url)
	return nil
}
