package fatigue

// Level is the fatigue severity, 0 to 3.
type Level int

// Fatigue levels.
const (
	// LevelNormal means no sign of fatigue.
	LevelNormal Level = iota
	// LevelMild means slightly raised PERCLOS or an abnormal blink rate.
	LevelMild
	// LevelModerate means PERCLOS above threshold or a closure longer than a second.
	LevelModerate
	// LevelSevere means very high PERCLOS or drowsiness.
	LevelSevere
)

// String returns the human readable description.
func (l Level) String() string {
	switch l {
	case LevelNormal:
		return "Normal"
	case LevelMild:
		return "Mild fatigue"
	case LevelModerate:
		return "Moderate fatigue"
	case LevelSevere:
		return "Severe fatigue"
	default:
		return "Unknown"
	}
}
