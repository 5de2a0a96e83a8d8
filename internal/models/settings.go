package models

// ThemeMode represents the user's theme preference
type ThemeMode string

const (
	// Theme modes
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

// ValidThemeMode reports whether m is a known theme mode.
func ValidThemeMode(m ThemeMode) bool {
	switch m {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// Settings holds the process-wide configuration: the two stock thresholds
// driving classification and the theme preference.
type Settings struct {
	LowStockThreshold    int       `json:"lowStockThreshold"`
	MediumStockThreshold int       `json:"mediumStockThreshold"`
	ThemeMode            ThemeMode `json:"themeMode"`
}

// DefaultSettings returns the settings used before any user customization.
func DefaultSettings() Settings {
	return Settings{
		LowStockThreshold:    5,
		MediumStockThreshold: 10,
		ThemeMode:            ThemeSystem,
	}
}
