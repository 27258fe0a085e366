package domain

type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
)

// ParseThemeMode maps a stored value to a mode; anything unknown is light.
func ParseThemeMode(v string) ThemeMode {
	if ThemeMode(v) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

func (m ThemeMode) Toggle() ThemeMode {
	if m == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
