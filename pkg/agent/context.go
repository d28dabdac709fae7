package agent

import (
	"fmt"
	"sync"
)

// Situation context field names accepted by Update.
const (
	FieldRaceStage          = "race_stage"
	FieldRecentResult       = "recent_result"
	FieldTeamDynamics       = "team_dynamics"
	FieldCompetitorDynamics = "competitor_dynamics"
)

// Situation is the driver's current situational context: where in the
// race weekend we are and how things are going.
type Situation struct {
	RaceStage          string `json:"race_stage"`
	RecentResult       string `json:"recent_result,omitempty"`
	TeamDynamics       string `json:"team_dynamics,omitempty"`
	CompetitorDynamics string `json:"competitor_dynamics,omitempty"`
}

// ContextManager holds the agent's mutable situation. Updates merge
// per-field, last writer wins; reads get copies so callers never observe
// a mid-update state.
type ContextManager struct {
	mu        sync.RWMutex
	situation Situation
}

func NewContextManager() *ContextManager {
	return &ContextManager{
		situation: Situation{RaceStage: "pre_race"},
	}
}

// Update merges fields into the situation. Field names outside the known
// set are a caller error, and a rejected update applies nothing: the
// merge happens on a local copy that is only assigned once every field
// has validated.
func (m *ContextManager) Update(fields map[string]string) (Situation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated := m.situation
	for k, v := range fields {
		switch k {
		case FieldRaceStage:
			updated.RaceStage = v
		case FieldRecentResult:
			updated.RecentResult = v
		case FieldTeamDynamics:
			updated.TeamDynamics = v
		case FieldCompetitorDynamics:
			updated.CompetitorDynamics = v
		default:
			return m.situation, fmt.Errorf("%w: %s", ErrUnknownContextField, k)
		}
	}
	m.situation = updated
	return m.situation, nil
}

// Snapshot returns a copy of the current situation.
func (m *ContextManager) Snapshot() Situation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.situation
}

// ContextMap flattens the situation into template context, omitting empty
// fields so template defaults can take over.
func (m *ContextManager) ContextMap() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, 4)
	if m.situation.RaceStage != "" {
		out[FieldRaceStage] = m.situation.RaceStage
	}
	if m.situation.RecentResult != "" {
		out[FieldRecentResult] = m.situation.RecentResult
	}
	if m.situation.TeamDynamics != "" {
		out[FieldTeamDynamics] = m.situation.TeamDynamics
	}
	if m.situation.CompetitorDynamics != "" {
		out[FieldCompetitorDynamics] = m.situation.CompetitorDynamics
	}
	return out
}
