package models

// DevicePrefs are per-device preferences. They live only in the local store,
// are never replicated and are stamped back onto every pulled snapshot.
type DevicePrefs struct {
	Language      string `json:"language"`
	Scale         int    `json:"scale"`
	Theme         string `json:"theme"`
	ProfileType   string `json:"profileType"` // "admin", "doctor", "secretary"
	ActiveProfile string `json:"activeProfile"`
}

// ApplyTo returns a copy of s with the device language and theme.
func (p DevicePrefs) ApplyTo(s *Snapshot) *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	if p.Language != "" {
		out.Settings.Language = p.Language
	}
	if p.Theme != "" {
		out.Settings.Theme = p.Theme
	}
	return &out
}
