package model

// Settings holds per-user notification preferences persisted in the
// key-value store.
type Settings struct {
	QuietHoursEnabled bool `json:"quiet_hours_enabled"`
	// QuietStart and QuietEnd are "HH:MM" local times. A window whose
	// start is after its end wraps past midnight (e.g. 22:00-07:00).
	QuietStart string `json:"quiet_start"`
	QuietEnd   string `json:"quiet_end"`
	// DeadlineHorizonHours bounds how far ahead deadline notifications
	// are generated.
	DeadlineHorizonHours int `json:"deadline_horizon_hours"`
}

// DefaultSettings returns the settings applied to users who have never
// saved preferences.
func DefaultSettings() Settings {
	return Settings{
		QuietHoursEnabled:    false,
		QuietStart:           "22:00",
		QuietEnd:             "07:00",
		DeadlineHorizonHours: 168,
	}
}

// UpdateSettingsRequest is the payload for updating user settings.
type UpdateSettingsRequest struct {
	QuietHoursEnabled    *bool  `json:"quiet_hours_enabled" binding:"omitempty"`
	QuietStart           string `json:"quiet_start" binding:"omitempty,len=5"`
	QuietEnd             string `json:"quiet_end" binding:"omitempty,len=5"`
	DeadlineHorizonHours *int   `json:"deadline_horizon_hours" binding:"omitempty,min=1,max=720"`
}
