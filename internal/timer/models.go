package timer

type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
)

// State is a snapshot of one countdown. It is never persisted.
type State struct {
	IsRunning            bool   `json:"isRunning"`
	TimeRemainingSeconds int    `json:"timeRemainingSeconds"`
	TotalDurationSeconds int    `json:"totalDurationSeconds"`
	Status               Status `json:"status"`
}

type Preferences struct {
	DefaultDurationSeconds int  `json:"defaultDurationSeconds"`
	AutoStartOnSetComplete bool `json:"autoStartOnSetComplete"`
	VibrationEnabled       bool `json:"vibrationEnabled"`
	SoundEnabled           bool `json:"soundEnabled"`
}

// PreferencesPatch carries a partial preferences update; nil fields are kept.
type PreferencesPatch struct {
	DefaultDurationSeconds *int  `json:"defaultDurationSeconds"`
	AutoStartOnSetComplete *bool `json:"autoStartOnSetComplete"`
	VibrationEnabled       *bool `json:"vibrationEnabled"`
	SoundEnabled           *bool `json:"soundEnabled"`
}

func DefaultPreferences(defaultSeconds int) Preferences {
	if defaultSeconds <= 0 {
		defaultSeconds = 90
	}
	return Preferences{
		DefaultDurationSeconds: defaultSeconds,
		VibrationEnabled:       true,
		SoundEnabled:           true,
	}
}
