package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"POIReview-App/internal/config"
	"POIReview-App/internal/database"
	"POIReview-App/internal/domain/model"
	domainrepo "POIReview-App/internal/domain/repository"
	"POIReview-App/internal/domain/service"
	"POIReview-App/internal/handler"
	infradb "POIReview-App/internal/infrastructure/database"
	"POIReview-App/internal/infrastructure/firestore"
	"POIReview-App/internal/infrastructure/imaging"
	"POIReview-App/internal/infrastructure/maps"
	"POIReview-App/internal/repository"
	"POIReview-App/internal/usecase"
)

func main() {
	cfg := config.Load()

	if cfg.Barikoi.APIKey == "" {
		log.Println("⚠️ BARIKOI_API_KEY が設定されていません。ドラッグ後の住所補完は行われません")
	}

	// POIレビューの中核
	store := service.NewPOIStore()
	sequencer := service.NewVisibilitySequencer(store)
	ids := service.NewUUIDAssigner()

	compressor := imaging.NewCompressor(cfg.Barikoi.MaxImageDimension, cfg.Barikoi.JPEGQuality)
	detector := maps.NewBarikoiDetectionProvider(cfg.Barikoi.ExtractURL, cfg.Barikoi.DetectTimeout, compressor)
	geocoder := maps.NewBarikoiReverseGeocoder(cfg.Barikoi.ReverseGeocodeURL, cfg.Barikoi.APIKey, cfg.Barikoi.GeocodeTimeout)

	gate := service.NewIngestionGate(store, sequencer, detector, ids)
	scheduler := service.NewRevealScheduler(store, sequencer, gate, cfg.Review.RevealInterval)
	gate.OnSettled(scheduler.Kick)
	log.Printf("⏱️ POI表示間隔: %v", scheduler.Cadence())
	pipeline := service.NewMutationPipeline(store, geocoder)

	sink, closeSink, err := buildExportSink(context.Background(), cfg.Export)
	if err != nil {
		log.Fatalf("❌ エクスポート先の初期化に失敗: %v", err)
	}
	defer closeSink()

	poiUseCase := usecase.NewPOIReviewUseCase(store, sequencer, gate, pipeline, sink)

	// CSVマーカー
	markerStore := service.NewMarkerStore()
	markerUseCase := usecase.NewMarkerUseCase(markerStore, ids, cfg.Markers.ChunkSize, cfg.Markers.ChunkDelay)

	router := handler.NewRouter(
		handler.NewPOIHandler(poiUseCase, cfg.Server.MaxUploadBytes),
		handler.NewMarkerHandler(markerUseCase, cfg.Server.MaxUploadBytes),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("🚀 POIReview-App server starting on :%s...", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ サーバーの起動に失敗: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 サーバーを停止しています...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️ サーバーの停止に失敗: %v", err)
	}

	scheduler.Stop()
	store.Dispose()
	log.Println("✅ サーバーを停止しました")
}

// buildExportSink は EXPORT_SINK に応じて確認済みPOIの保存先を作る
// none の場合は nil を返し、公開APIは 503 を返す
func buildExportSink(ctx context.Context, cfg config.ExportConfig) (domainrepo.POIExportRepository, func(), error) {
	noop := func() {}

	switch cfg.Sink {
	case model.ExportSinkNone, "":
		log.Println("ℹ️ エクスポート先: なし")
		return nil, noop, nil

	case model.ExportSinkSupabase:
		client, err := database.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			return nil, noop, err
		}
		if err := client.HealthCheck(); err != nil {
			return nil, noop, err
		}
		return repository.NewSupabaseExportRepository(client), noop, nil

	case model.ExportSinkPostgres:
		client, err := infradb.NewPostgreSQLClient(cfg.DatabaseURL, cfg.SupabaseURL, cfg.SupabaseDBPassword)
		if err != nil {
			return nil, noop, err
		}
		if err := client.HealthCheck(ctx); err != nil {
			client.Close()
			return nil, noop, err
		}
		repo := repository.NewPostgresExportRepository(client)
		if err := repo.EnsureSchema(ctx); err != nil {
			client.Close()
			return nil, noop, err
		}
		return repo, func() { client.Close() }, nil

	case model.ExportSinkFirestore:
		client, err := firestore.NewFirestoreClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredential)
		if err != nil {
			return nil, noop, err
		}
		return repository.NewFirestoreExportRepository(client.GetClient()), func() { client.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("未対応のエクスポート先です: %s", cfg.Sink)
	}
}
