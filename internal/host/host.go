// Package host models the optional Mini App host capabilities.
// Every capability may be missing; callers never check for errors.
package host

import (
	"rubconv-service/internal/domain"

	"go.uber.org/zap"
)

type HapticKind string

const (
	HapticSuccess HapticKind = "success"
	HapticError   HapticKind = "error"
	HapticLight   HapticKind = "light"
)

type Capabilities interface {
	Theme() (domain.Theme, bool)
	SetMainButton(label string, visible bool)
	Haptic(kind HapticKind)
}

// Noop is used when the host exposes nothing.
type Noop struct{}

func (Noop) Theme() (domain.Theme, bool) { return "", false }
func (Noop) SetMainButton(string, bool)  {}
func (Noop) Haptic(HapticKind)           {}

// Logging records host calls instead of forwarding them anywhere.
type Logging struct {
	Log        *zap.Logger
	ThemeValue domain.Theme
}

func NewLogging(log *zap.Logger, theme domain.Theme) *Logging {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logging{Log: log.With(zap.String("component", "host")), ThemeValue: theme}
}

func (l *Logging) Theme() (domain.Theme, bool) {
	if l.ThemeValue == "" {
		return "", false
	}
	return l.ThemeValue, true
}

func (l *Logging) SetMainButton(label string, visible bool) {
	l.Log.Debug("host.main_button", zap.String("label", label), zap.Bool("visible", visible))
}

func (l *Logging) Haptic(kind HapticKind) {
	l.Log.Debug("host.haptic", zap.String("kind", string(kind)))
}

// Select picks the implementation once at startup.
func Select(mode string, log *zap.Logger, theme domain.Theme) Capabilities {
	switch mode {
	case "log":
		return NewLogging(log, theme)
	default:
		return Noop{}
	}
}
