package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"POIReview-App/internal/domain/helper"
	"POIReview-App/internal/domain/model"
	"POIReview-App/internal/domain/repository"
)

// IngestionGate は「アップロードからPOIを検出する」処理を同時に1件だけ実行する
type IngestionGate struct {
	store     *POIStore
	sequencer *VisibilitySequencer
	detector  repository.DetectionProvider
	ids       IDAssigner

	sem      *semaphore.Weighted
	inFlight atomic.Bool

	mu        sync.Mutex
	onSettled []func()
}

// NewIngestionGate は新しいIngestionGateを作成
func NewIngestionGate(store *POIStore, sequencer *VisibilitySequencer, detector repository.DetectionProvider, ids IDAssigner) *IngestionGate {
	if ids == nil {
		ids = NewUUIDAssigner()
	}
	return &IngestionGate{
		store:     store,
		sequencer: sequencer,
		detector:  detector,
		ids:       ids,
		sem:       semaphore.NewWeighted(1),
	}
}

// OnSettled は検出リクエストが完了（成功・失敗問わず）したときのリスナーを登録する
func (g *IngestionGate) OnSettled(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onSettled = append(g.onSettled, fn)
}

// InFlight は検出リクエストが処理中かどうかを返す
func (g *IngestionGate) InFlight() bool {
	return g.inFlight.Load()
}

// Ingest は表示をリセットしてから検出を実行し、成功したらストアを置き換える
// 失敗時はストアを変更せずエラーを返す（部分的な反映はしない）
func (g *IngestionGate) Ingest(ctx context.Context, req model.DetectionRequest) ([]model.POI, error) {
	if !g.sem.TryAcquire(1) {
		return nil, model.ErrIngestionInFlight
	}
	defer g.sem.Release(1)

	g.inFlight.Store(true)
	settled := false
	settle := func() {
		if settled {
			return
		}
		settled = true
		g.inFlight.Store(false)
	}
	defer func() {
		settle()
		g.notifySettled()
	}()

	// 前の画像のPOIは新しい検出結果を待つ間すぐに非表示にする
	g.sequencer.Reset()

	log.Printf("🚀 POI検出開始 (ファイル: %s, サイズ: %d bytes)", req.Filename, len(req.Image))
	raws, err := g.detector.Detect(ctx, req)
	if err != nil {
		log.Printf("❌ POI検出に失敗: %v", err)
		return nil, fmt.Errorf("%w: %w", model.ErrDetectionFailed, err)
	}

	pois := make([]model.POI, 0, len(raws))
	for i, raw := range raws {
		poi, err := helper.FromRawDetected(g.ids.Assign(), raw)
		if err != nil {
			log.Printf("❌ 検出結果 %d 件目の変換に失敗: %v", i+1, err)
			return nil, fmt.Errorf("%w: %d件目: %w", model.ErrMalformedDetection, i+1, err)
		}
		pois = append(pois, poi)
	}

	// 処理中フラグを下ろしてから置き換えることで、変更通知を受けた表示タスクがすぐに動ける
	settle()
	g.store.ReplaceAll(pois)

	log.Printf("✅ POI検出完了: %d件", len(pois))
	return g.store.All(), nil
}

func (g *IngestionGate) notifySettled() {
	g.mu.Lock()
	listeners := g.onSettled
	g.mu.Unlock()
	notify(listeners)
}
