package session

import "strings"

const (
	themeCookie       = "ZYLTheme"
	screenTypeKey     = "ScreenType="
	defaultScreenType = "ScreenType=1280"
)

// Repair fixes known-bad cookie values in place. The platform writes a
// ZYLTheme cookie whose ScreenType segment can be left empty by some
// browsers; detail pages then fail to render their hidden fields. An empty
// segment is rewritten to the 1280 screen type the platform accepts.
func Repair(cookies map[string]string) {
	theme, ok := cookies[themeCookie]
	if !ok || !strings.Contains(theme, screenTypeKey) {
		return
	}
	if strings.Contains(theme, defaultScreenType) {
		return
	}
	idx := strings.Index(theme, screenTypeKey)
	rest := theme[idx+len(screenTypeKey):]
	if rest != "" && !strings.HasPrefix(rest, "&") && !strings.HasPrefix(rest, ";") {
		// A concrete value is already present; leave it alone.
		return
	}
	cookies[themeCookie] = theme[:idx] + defaultScreenType + rest
}
