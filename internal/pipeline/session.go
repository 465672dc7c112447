package pipeline

import (
	"sync"

	"brandforge/internal/models"

	"github.com/google/uuid"
)

// Stage marks where a session sits in the linear pipeline.
type Stage int

const (
	StageInput Stage = iota
	StageExtracting
	StageDashboard
	StageGenerating
	StageResults
)

func (s Stage) String() string {
	switch s {
	case StageInput:
		return "input"
	case StageExtracting:
		return "extracting"
	case StageDashboard:
		return "dashboard"
	case StageGenerating:
		return "generating"
	case StageResults:
		return "results"
	}
	return "unknown"
}

// Session is the single mutable record for one user interaction. It is
// mutated only by the Orchestrator, under its mutex; there is exactly one
// logical in-flight interaction per session.
type Session struct {
	mu sync.Mutex

	ID        string
	Stage     Stage
	URL       string
	Profile   *models.BrandProfile
	Campaigns []models.CampaignConcept
	Visuals   map[int]*models.RenderedVisual
	Artifacts map[string]*models.RenderedVisual
	LastErr   string
}

func newSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		Stage:     StageInput,
		Visuals:   make(map[int]*models.RenderedVisual),
		Artifacts: make(map[string]*models.RenderedVisual),
	}
}

// View returns a consistent shallow copy for display. Profile, campaign
// entries and visual envelopes are immutable once stored, so sharing them
// with the presentation layer is safe.
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	visuals := make(map[int]*models.RenderedVisual, len(s.Visuals))
	for id, v := range s.Visuals {
		visuals[id] = v
	}
	artifacts := make(map[string]*models.RenderedVisual, len(s.Artifacts))
	for name, v := range s.Artifacts {
		artifacts[name] = v
	}

	return SessionView{
		ID:        s.ID,
		Stage:     s.Stage,
		URL:       s.URL,
		Profile:   s.Profile,
		Campaigns: append([]models.CampaignConcept(nil), s.Campaigns...),
		Visuals:   visuals,
		Artifacts: artifacts,
		LastErr:   s.LastErr,
	}
}

// SessionView is the read-only snapshot consumed by the presentation
// layer.
type SessionView struct {
	ID        string
	Stage     Stage
	URL       string
	Profile   *models.BrandProfile
	Campaigns []models.CampaignConcept
	Visuals   map[int]*models.RenderedVisual
	Artifacts map[string]*models.RenderedVisual
	LastErr   string
}

// Store maps session ids to live sessions. Sessions exist only in memory
// and only until reset; nothing is persisted.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Get returns the session for id, or nil when unknown.
func (st *Store) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sessions[id]
}

// New creates and registers a fresh empty session.
func (st *Store) New() *Session {
	s := newSession()
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Reset drops the session for id and hands back a fresh one. Every field
// of the old record becomes unreachable; nothing leaks into the new run.
func (st *Store) Reset(id string) *Session {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
	return st.New()
}
