package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"

	"POIReview-App/internal/domain/model"
	"POIReview-App/internal/domain/repository"
)

const poiExportCollection = "poiExports"

// FirestoreExportRepository Firestoreを使用したPOIエクスポート先
type FirestoreExportRepository struct {
	client *firestore.Client
	now    func() time.Time
}

// NewFirestoreExportRepository 新しいFirestoreExportRepositoryインスタンスを作成
func NewFirestoreExportRepository(client *firestore.Client) repository.POIExportRepository {
	return &FirestoreExportRepository{
		client: client,
		now:    time.Now,
	}
}

// SavePOIs はPOIごとにIDをドキュメントIDとして保存する
func (r *FirestoreExportRepository) SavePOIs(ctx context.Context, pois []model.POI) error {
	if len(pois) == 0 {
		return model.ErrNothingToExport
	}

	collection := r.client.Collection(poiExportCollection)
	now := r.now()

	for _, p := range pois {
		row := POIToExportRow(p, now)
		if _, err := collection.Doc(row.ID).Set(ctx, row); err != nil {
			log.Printf("❌ Failed to export POI %s: %v", row.ID, err)
			return fmt.Errorf("POIエクスポートの保存に失敗しました: %w", err)
		}
	}

	log.Printf("✅ Firestoreに%d件のPOIをエクスポートしました", len(pois))
	return nil
}
