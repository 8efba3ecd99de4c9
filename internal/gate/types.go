package gate

// #region veto-type
// VetoType enumerates hard veto categories.
type VetoType string

const (
	VetoIdentity  VetoType = "identity"  // scene or chapter name missing
	VetoEmotion   VetoType = "emotion"   // not one of the canonical emotions
	VetoIntensity VetoType = "intensity" // outside the signed intensity range
	VetoPOV       VetoType = "pov"       // detected POV is not a mentioned character
	VetoConflict  VetoType = "conflict"  // detected summary longer than the cap
	VetoShape     VetoType = "shape"     // nil list field
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected hard veto condition.
type VetoSignal struct {
	Type   VetoType
	Reason string
}

// #endregion veto-signal

// #region gate-config
// GateConfig holds the limits a snapshot is checked against.
type GateConfig struct {
	MaxConflictRunes int // cap on auto-detected conflict summaries
	RequirePOVMember bool
}

// DefaultGateConfig matches the detector limits.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MaxConflictRunes: conflictCap,
		RequirePOVMember: true,
	}
}

// #endregion gate-config

// #region gate-decision
// GateDecision is the output of the gate evaluation.
type GateDecision struct {
	Action      string // "commit" | "reject"
	Reason      string
	Vetoed      bool
	VetoSignals []VetoSignal // non-empty if vetoed
}

// #endregion gate-decision
