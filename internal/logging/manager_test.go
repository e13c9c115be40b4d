package logging

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withTempWorkdir уводит logs/ во временную директорию теста
func withTempWorkdir(t *testing.T) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoggerManager_CachesPerComponent(t *testing.T) {
	withTempWorkdir(t)
	lm := GetLoggerManager()
	t.Cleanup(func() { lm.CloseAll() })

	first, err := lm.GetLogger("world")
	require.NoError(t, err)
	second, err := lm.GetLogger("world")
	require.NoError(t, err)
	assert.Same(t, first, second, "Компонент получает один и тот же логгер")

	other, err := lm.GetLogger("realtime")
	require.NoError(t, err)
	assert.NotSame(t, first, other, "Разные компоненты пишут в разные файлы")
}

func TestLoggerManager_ComponentAccessors(t *testing.T) {
	withTempWorkdir(t)
	lm := GetLoggerManager()
	t.Cleanup(func() { lm.CloseAll() })

	require.NotNil(t, GetServerLogger())
	require.NotNil(t, GetWorldLogger())
	require.NotNil(t, GetRealtimeLogger())

	assert.Same(t, GetWorldLogger(), GetWorldLogger())
}

func TestLoggerManager_SetLogLevel(t *testing.T) {
	withTempWorkdir(t)
	lm := GetLoggerManager()
	t.Cleanup(func() { lm.CloseAll() })

	logger := lm.MustGetLogger("server")
	require.NoError(t, lm.SetLogLevel("server", WARN, DEBUG))
	assert.Equal(t, WARN, logger.minConsoleLevel)
	assert.Equal(t, DEBUG, logger.minFileLevel)

	assert.Error(t, lm.SetLogLevel("ghost", INFO, INFO),
		"Уровень нельзя задать несозданному логгеру")
}

func TestLoggerManager_CloseAll(t *testing.T) {
	withTempWorkdir(t)
	lm := GetLoggerManager()

	before := lm.MustGetLogger("world")
	require.NoError(t, lm.CloseAll())

	// После CloseAll компонент получает свежий логгер
	after := lm.MustGetLogger("world")
	assert.NotSame(t, before, after)
	require.NoError(t, lm.CloseAll())
}
