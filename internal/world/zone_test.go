package world

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneRegistry_Defaults(t *testing.T) {
	registry := NewZoneRegistry()

	zones := registry.Zones()
	require.Len(t, zones, 5, "Реестр фиксирован на пяти зонах")

	names := make([]string, 0, len(zones))
	for _, z := range zones {
		names = append(names, z.Name)
	}
	assert.Equal(t, []string{"FOREST", "PLAZA", "COAST", "MEADOW", "SHRINE"}, names,
		"Порядок регистрации должен сохраняться")

	assert.Equal(t, "FOREST", registry.First().Name)

	forest, ok := registry.Zone("FOREST")
	require.True(t, ok)
	assert.Equal(t, Zone{Name: "FOREST", X: 0, Y: 0, Width: 300, Height: 300}, forest)

	_, ok = registry.Zone("VOID")
	assert.False(t, ok, "Незарегистрированная зона должна возвращать not-found")
}

func TestZone_RandomPoint(t *testing.T) {
	shrine := Zone{Name: "SHRINE", X: 150, Y: 150, Width: 200, Height: 200}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 100; i++ {
		x, y := shrine.RandomPoint(rng)
		assert.True(t, shrine.Contains(x, y), "Точка (%f, %f) должна лежать внутри зоны", x, y)
	}
}

func TestZone_Contains(t *testing.T) {
	forest := Zone{Name: "FOREST", X: 0, Y: 0, Width: 300, Height: 300}

	assert.True(t, forest.Contains(0, 0), "Края включаются")
	assert.True(t, forest.Contains(300, 300))
	assert.False(t, forest.Contains(300.1, 150))
	assert.False(t, forest.Contains(-1, 150))
}
