package engine

import "fmt"

// GamePhase represents the current phase of the round state machine.
type GamePhase int

const (
	PhaseSetup          GamePhase = iota // created, no round played yet
	PhaseWhimDraft                       // players drafting whims into the crowd deck
	PhaseOps                             // players taking actions
	PhaseCrowd                           // whims revealed, water sold, impact consolidated
	PhaseThresholdCheck                  // cleanup, futures, events, static effects
	PhaseRoundReset                      // segments restored
	PhaseGameOver                        // final scores computed
)

var phaseNames = map[GamePhase]string{
	PhaseSetup:          "Setup",
	PhaseWhimDraft:      "WhimDraft",
	PhaseOps:            "Ops",
	PhaseCrowd:          "Crowd",
	PhaseThresholdCheck: "ThresholdCheck",
	PhaseRoundReset:     "RoundReset",
	PhaseGameOver:       "GameOver",
}

func (p GamePhase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "Unknown"
}

func (p GamePhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *GamePhase) UnmarshalText(b []byte) error {
	for k, v := range phaseNames {
		if v == string(b) {
			*p = k
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}
