package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"POIReview-App/internal/domain/model"
	"POIReview-App/internal/domain/repository"
	"POIReview-App/internal/infrastructure/database"
)

const createPOIExportsTable = `
CREATE TABLE IF NOT EXISTS poi_exports (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL,
	address          TEXT NOT NULL DEFAULT '',
	road_info        TEXT NOT NULL DEFAULT '',
	area             TEXT NOT NULL DEFAULT '',
	sub_area         TEXT NOT NULL DEFAULT '',
	city             TEXT NOT NULL DEFAULT '',
	post_code        TEXT NOT NULL DEFAULT '',
	p_type           TEXT NOT NULL DEFAULT '',
	latitude         DOUBLE PRECISION NOT NULL,
	longitude        DOUBLE PRECISION NOT NULL,
	location         JSONB,
	exists_in_system BOOLEAN NOT NULL DEFAULT FALSE,
	confidence       DOUBLE PRECISION NOT NULL DEFAULT 0,
	exported_at      TIMESTAMPTZ NOT NULL
)`

const upsertPOIExport = `
INSERT INTO poi_exports (
	id, name, status, address, road_info, area, sub_area, city, post_code, p_type,
	latitude, longitude, location, exists_in_system, confidence, exported_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	status = EXCLUDED.status,
	address = EXCLUDED.address,
	road_info = EXCLUDED.road_info,
	area = EXCLUDED.area,
	sub_area = EXCLUDED.sub_area,
	city = EXCLUDED.city,
	post_code = EXCLUDED.post_code,
	p_type = EXCLUDED.p_type,
	latitude = EXCLUDED.latitude,
	longitude = EXCLUDED.longitude,
	location = EXCLUDED.location,
	exists_in_system = EXCLUDED.exists_in_system,
	confidence = EXCLUDED.confidence,
	exported_at = EXCLUDED.exported_at`

type PostgresExportRepository struct {
	client *database.PostgreSQLClient
	now    func() time.Time
}

func NewPostgresExportRepository(client *database.PostgreSQLClient) *PostgresExportRepository {
	return &PostgresExportRepository{
		client: client,
		now:    time.Now,
	}
}

// EnsureSchema は poi_exports テーブルがなければ作成する
func (r *PostgresExportRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.client.DB.ExecContext(ctx, createPOIExportsTable); err != nil {
		return fmt.Errorf("poi_exportsテーブルの作成に失敗: %w", err)
	}
	return nil
}

// SavePOIs は1トランザクションでPOIをアップサートする
func (r *PostgresExportRepository) SavePOIs(ctx context.Context, pois []model.POI) error {
	if len(pois) == 0 {
		return model.ErrNothingToExport
	}

	tx, err := r.client.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertPOIExport)
	if err != nil {
		return fmt.Errorf("ステートメントの準備に失敗: %w", err)
	}
	defer stmt.Close()

	now := r.now()
	for _, p := range pois {
		row := POIToExportRow(p, now)
		location, err := json.Marshal(row.Location)
		if err != nil {
			return fmt.Errorf("location JSONの生成に失敗: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			row.ID, row.Name, row.Status, row.Address, row.RoadInfo, row.Area, row.SubArea,
			row.City, row.PostCode, row.PType, row.Latitude, row.Longitude, string(location),
			row.ExistsInSystem, row.Confidence, row.ExportedAt,
		); err != nil {
			return fmt.Errorf("POI %s の保存に失敗: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗: %w", err)
	}

	log.Printf("✅ PostgreSQLに%d件のPOIをエクスポートしました", len(pois))
	return nil
}

var _ repository.POIExportRepository = (*PostgresExportRepository)(nil)
