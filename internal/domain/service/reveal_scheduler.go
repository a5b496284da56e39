package service

import (
	"log"
	"sync"
	"time"
)

// DefaultRevealInterval POIを1件ずつ表示する間隔
const DefaultRevealInterval = 300 * time.Millisecond

// InFlightChecker は検出リクエストが処理中かどうかを返す
type InFlightChecker interface {
	InFlight() bool
}

// RevealScheduler は一定間隔で RevealNext を呼ぶ取り消し可能な繰り返しタスク
// 予約時の進捗をトークンとして持ち、発火時に進捗が変わっていれば何もしない
type RevealScheduler struct {
	sequencer *VisibilitySequencer
	busy      InFlightChecker
	cadence   time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	token   uint64
	stopped bool
}

// NewRevealScheduler は新しいRevealSchedulerを作成し、ストアの変更を購読する
func NewRevealScheduler(store *POIStore, sequencer *VisibilitySequencer, busy InFlightChecker, cadence time.Duration) *RevealScheduler {
	if cadence <= 0 {
		cadence = DefaultRevealInterval
	}
	s := &RevealScheduler{
		sequencer: sequencer,
		busy:      busy,
		cadence:   cadence,
	}
	store.OnChange(s.Kick)
	return s
}

// Kick は予約中のタイマーを取り消し、条件を満たせば次の表示を予約し直す
// 条件: ストアが空でない、表示が追いついていない、検出リクエストが処理中でない
func (s *RevealScheduler) Kick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.token++
	if s.stopped {
		return
	}

	p := s.sequencer.Progress()
	if p.Total == 0 || p.Visible >= p.Total {
		return
	}
	if s.busy != nil && s.busy.InFlight() {
		return
	}

	token := s.token
	s.timer = time.AfterFunc(s.cadence, func() {
		s.fire(token, p)
	})
}

func (s *RevealScheduler) fire(token uint64, p Progress) {
	s.mu.Lock()
	if s.stopped || token != s.token {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	if s.busy != nil && s.busy.InFlight() {
		return
	}
	// 表示が進むとストアの変更通知で Kick が呼ばれ、次の1件が予約される
	if poi, ok := s.sequencer.RevealNextIfUnchanged(p); ok {
		log.Printf("👀 POIを表示: %s (%d/%d)", poi.ID, p.Visible+1, p.Total)
	}
}

// Stop は予約中のタイマーを取り消し、以後の予約を止める
func (s *RevealScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	s.token++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Cadence は表示間隔を返す
func (s *RevealScheduler) Cadence() time.Duration {
	return s.cadence
}
