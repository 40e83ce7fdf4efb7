package host

import (
	"testing"

	"rubconv-service/internal/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSelect(t *testing.T) {
	require.IsType(t, Noop{}, Select("", nil, ""))
	require.IsType(t, &Logging{}, Select("log", zap.NewNop(), domain.ThemeDark))
}

func TestNoop_Theme(t *testing.T) {
	_, ok := Noop{}.Theme()
	require.False(t, ok)
}

func TestLogging_Records(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	h := NewLogging(zap.New(core), domain.ThemeDark)

	theme, ok := h.Theme()
	require.True(t, ok)
	require.Equal(t, domain.ThemeDark, theme)

	h.SetMainButton("Save 100,00 ₽", true)
	h.Haptic(HapticSuccess)

	require.Equal(t, 1, logs.FilterMessage("host.main_button").Len())
	entry := logs.FilterMessage("host.haptic").All()
	require.Len(t, entry, 1)
	require.Equal(t, "success", entry[0].ContextMap()["kind"])
}
