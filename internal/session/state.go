// Package session はブラウザのセッションごとの画面状態を保持します。
package session

import (
	"sync"

	"ap-script-web/internal/domain"
)

// Phase は2段階コールの進行状況です。
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseExtracting
	PhaseExtracted
	PhaseGenerating
	PhaseGenerated
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseExtracting:
		return "extracting"
	case PhaseExtracted:
		return "extracted"
	case PhaseGenerating:
		return "generating"
	case PhaseGenerated:
		return "generated"
	}
	return "unknown"
}

// InFlight はリモートコールが実行中かどうかを返します。
func (p Phase) InFlight() bool {
	return p == PhaseExtracting || p == PhaseGenerating
}

// Ticket は実行中のコールを識別します。Reset を挟んだ古いコールの結果は破棄されます。
type Ticket struct {
	epoch uint64
	kind  Phase
}

// State は1セッション分の状態です。書き込みはパイプライン、読み取りは画面描画が担当します。
// ロックは遷移の間だけ保持し、ネットワーク待ちの間は保持しません。
type State struct {
	mu sync.Mutex

	id     string
	apiKey string // メモリ上のみ。ログやクッキーには出さない

	sourceURL string
	genre     domain.Genre
	summary   string
	document  *domain.GeneratedDocument

	phase       Phase
	resumeTo    Phase        // 失敗時に戻るフェーズ
	resumeGenre domain.Genre // 失敗時に戻すジャンル
	errMsg      string
	epoch       uint64
}

// Snapshot は描画用の読み取り専用コピーです。
type Snapshot struct {
	ID        string
	HasAPIKey bool
	SourceURL string
	Genre     domain.Genre
	Summary   string
	Document  *domain.GeneratedDocument
	Phase     Phase
	Error     string
	// Extracted は抽出が確定済みかどうかです。要約が空白だけでも true になります。
	Extracted bool
}

// NewState は Idle 状態のセッションを生成します。
func NewState(id string) *State {
	return &State{id: id}
}

func (s *State) ID() string {
	return s.id
}

func (s *State) APIKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKey
}

// SetAPIKey はキーを差し替えます。空文字は無視します。
func (s *State) SetAPIKey(key string) {
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = key
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:        s.id,
		HasAPIKey: s.apiKey != "",
		SourceURL: s.sourceURL,
		Genre:     s.genre,
		Summary:   s.summary,
		Phase:     s.phase,
		Error:     s.errMsg,
		Extracted: s.extractedLocked(),
	}
	if s.document != nil {
		doc := *s.document
		snap.Document = &doc
	}
	return snap
}

// BeginExtraction は抽出コールの開始を記録します。
// いずれかのコールが実行中なら domain.ErrBusy を返します。
func (s *State) BeginExtraction() (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.busyLocked(); err != nil {
		return Ticket{}, err
	}
	return s.beginLocked(PhaseExtracting), nil
}

// CompleteExtraction は抽出結果を確定させます。以前の生成結果は新しい要約と対応しないため破棄します。
func (s *State) CompleteExtraction(t Ticket, sourceURL, summary string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.currentLocked(t, PhaseExtracting) {
		return false
	}
	s.sourceURL = sourceURL
	s.summary = summary
	s.document = nil
	s.phase = PhaseExtracted
	return true
}

// BeginGeneration は生成コールの開始を記録し、コールに渡す不変のリクエストを返します。
func (s *State) BeginGeneration(genre domain.Genre) (Ticket, domain.AdaptationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.busyLocked(); err != nil {
		return Ticket{}, domain.AdaptationRequest{}, err
	}
	if s.phase != PhaseExtracted && s.phase != PhaseGenerated {
		return Ticket{}, domain.AdaptationRequest{}, &domain.CallError{
			Kind:    domain.ErrNotExtracted,
			Message: "Please extract content from a URL before generating a script",
		}
	}

	req := domain.AdaptationRequest{
		SourceURL:        s.sourceURL,
		Genre:            genre,
		ExtractedSummary: s.summary,
	}
	t := s.beginLocked(PhaseGenerating)
	s.genre = genre
	return t, req, nil
}

// CompleteGeneration は生成結果を確定させます。
func (s *State) CompleteGeneration(t Ticket, doc domain.GeneratedDocument) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.currentLocked(t, PhaseGenerating) {
		return false
	}
	s.document = &doc
	s.phase = PhaseGenerated
	return true
}

// Fail はコールの失敗を記録します。要約や生成結果は開始前の状態のまま残し、エラーメッセージだけを重ねます。
func (s *State) Fail(t Ticket, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.currentLocked(t, t.kind) {
		return false
	}
	s.phase = s.resumeTo
	s.genre = s.resumeGenre
	s.errMsg = message
	return true
}

// Reset は API キー以外をすべて初期化します。実行中のコールの結果は以後破棄されます。
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.sourceURL = ""
	s.genre = ""
	s.summary = ""
	s.document = nil
	s.phase = PhaseIdle
	s.resumeTo = PhaseIdle
	s.resumeGenre = ""
	s.errMsg = ""
}

func (s *State) busyLocked() error {
	switch s.phase {
	case PhaseExtracting:
		return &domain.CallError{Kind: domain.ErrBusy, Message: "Content extraction is already in progress"}
	case PhaseGenerating:
		return &domain.CallError{Kind: domain.ErrBusy, Message: "Script generation is already in progress"}
	}
	return nil
}

func (s *State) beginLocked(kind Phase) Ticket {
	s.epoch++
	s.resumeTo = s.phase
	s.resumeGenre = s.genre
	s.phase = kind
	s.errMsg = ""
	return Ticket{epoch: s.epoch, kind: kind}
}

// extractedLocked は実行中のコールがあれば開始前のフェーズで判定します。
func (s *State) extractedLocked() bool {
	phase := s.phase
	if phase.InFlight() {
		phase = s.resumeTo
	}
	return phase == PhaseExtracted || phase == PhaseGenerated
}

func (s *State) currentLocked(t Ticket, kind Phase) bool {
	return t.epoch == s.epoch && t.kind == kind && s.phase == kind
}
