package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"POIReview-App/internal/database"
	"POIReview-App/internal/domain/model"
	"POIReview-App/internal/domain/repository"
)

const poiExportTable = "poi_exports"

type SupabaseExportRepository struct {
	client *database.SupabaseClient
	now    func() time.Time
}

func NewSupabaseExportRepository(client *database.SupabaseClient) repository.POIExportRepository {
	return &SupabaseExportRepository{
		client: client,
		now:    time.Now,
	}
}

// SavePOIs は poi_exports テーブルにIDをキーとしてアップサートする
func (r *SupabaseExportRepository) SavePOIs(ctx context.Context, pois []model.POI) error {
	if len(pois) == 0 {
		return model.ErrNothingToExport
	}

	now := r.now()
	rows := make([]POIExportRow, 0, len(pois))
	for _, p := range pois {
		rows = append(rows, POIToExportRow(p, now))
	}

	if err := r.client.Upsert(poiExportTable, "id", rows); err != nil {
		return fmt.Errorf("POIエクスポートの保存失敗: %w", err)
	}

	log.Printf("✅ Supabaseに%d件のPOIをエクスポートしました", len(rows))
	return nil
}
