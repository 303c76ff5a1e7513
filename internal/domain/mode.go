package domain

// Mode selects the instruction set that frames the assistant's replies.
type Mode string

const (
	ModeCritic   Mode = "critic"
	ModeCreative Mode = "creative"
	ModeAdvisor  Mode = "advisor"
	ModeTrends   Mode = "trends"
)

// DefaultMode is active when a session starts.
const DefaultMode = ModeCritic

// Valid reports whether m is one of the four known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeCritic, ModeCreative, ModeAdvisor, ModeTrends:
		return true
	}
	return false
}
