package ui

import "github.com/agbru/ordersim/internal/order"

// Colors reads escape codes from the active theme. It satisfies the
// ColorProvider interface of the errors package.
type Colors struct{}

func (Colors) Red() string     { return GetCurrentTheme().Error }
func (Colors) Yellow() string  { return GetCurrentTheme().Warning }
func (Colors) Green() string   { return GetCurrentTheme().Success }
func (Colors) Blue() string    { return GetCurrentTheme().Primary }
func (Colors) Magenta() string { return GetCurrentTheme().Info }
func (Colors) Gray() string    { return GetCurrentTheme().Secondary }
func (Colors) Bold() string    { return GetCurrentTheme().Bold }
func (Colors) Reset() string   { return GetCurrentTheme().Reset }

// StatusColor returns the escape code for a result status.
func StatusColor(s order.Status) string {
	t := GetCurrentTheme()
	switch s {
	case order.StatusCompleted:
		return t.Success
	case order.StatusFailed:
		return t.Error
	default:
		return t.Warning
	}
}

// Colorize wraps text in code and a reset, or returns text unchanged when
// code is empty.
func Colorize(code, text string) string {
	if code == "" {
		return text
	}
	return code + text + GetCurrentTheme().Reset
}
