package world

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink собирает события миграции для проверок
type recordingSink struct {
	mu      sync.Mutex
	moves   []Character
	pops    []map[string]int
	blockCh chan struct{} // если не nil, PopulationUpdate блокируется до закрытия
}

func (rs *recordingSink) CharacterMoved(ch Character) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.moves = append(rs.moves, ch)
}

func (rs *recordingSink) PopulationUpdate(population map[string]int) {
	if rs.blockCh != nil {
		<-rs.blockCh
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.pops = append(rs.pops, population)
}

func (rs *recordingSink) snapshot() ([]Character, []map[string]int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]Character(nil), rs.moves...), append([]map[string]int(nil), rs.pops...)
}

func populateStore(store *CharacterStore, registry *ZoneRegistry, n int) {
	zones := registry.Zones()
	for i := 0; i < n; i++ {
		zone := zones[i%len(zones)]
		store.CreateCharacter(newTestCharacter("tester", zone.Name, zone.X, zone.Y))
	}
}

func TestMigrationScheduler_ZeroProbability(t *testing.T) {
	registry := NewZoneRegistry()
	store := NewCharacterStore()
	sink := &recordingSink{}

	populateStore(store, registry, 20)
	before := store.Characters()

	scheduler := NewMigrationScheduler(store, registry, sink, time.Second, 0, 1)
	scheduler.Tick()

	moves, pops := sink.snapshot()
	assert.Empty(t, moves, "При p=0 перемещений быть не должно")
	require.Len(t, pops, 1, "Снимок населенности публикуется каждый тик")
	assert.Equal(t, before, store.Characters(), "Хранилище не должно меняться")
}

func TestMigrationScheduler_FullProbability(t *testing.T) {
	registry := NewZoneRegistry()
	store := NewCharacterStore()
	sink := &recordingSink{}

	populateStore(store, registry, 50)

	scheduler := NewMigrationScheduler(store, registry, sink, time.Second, 1.0, 42)
	scheduler.Tick()

	moves, pops := sink.snapshot()
	require.Len(t, pops, 1)
	assert.NotEmpty(t, moves, "При p=1 хотя бы часть персонажей должна сменить зону")

	// Каждый переехавший оказывается внутри своей новой зоны
	for _, moved := range moves {
		zone, ok := registry.Zone(moved.CurrentZone)
		require.True(t, ok, "Назначение всегда из реестра")
		assert.True(t, zone.Contains(moved.X, moved.Y),
			"Персонаж %d должен стоять внутри зоны %s", moved.ID, moved.CurrentZone)
	}

	// Сумма населенности после тика равна числу персонажей
	total := 0
	for _, count := range pops[0] {
		total += count
	}
	assert.Equal(t, store.Count(), total)
}

func TestMigrationScheduler_Deterministic(t *testing.T) {
	run := func() []Character {
		registry := NewZoneRegistry()
		store := NewCharacterStore()
		sink := &recordingSink{}
		populateStore(store, registry, 30)

		scheduler := NewMigrationScheduler(store, registry, sink, time.Second, 0.5, 1337)
		scheduler.Tick()
		scheduler.Tick()

		moves, _ := sink.snapshot()
		return moves
	}

	first := run()
	second := run()

	require.Len(t, second, len(first), "Одинаковый seed дает одинаковое число переездов")
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].CurrentZone, second[i].CurrentZone)
		assert.Equal(t, first[i].X, second[i].X)
		assert.Equal(t, first[i].Y, second[i].Y)
	}
}

func TestMigrationScheduler_UnregisteredZoneSkipped(t *testing.T) {
	registry := NewZoneRegistry()
	store := NewCharacterStore()
	sink := &recordingSink{}

	ch := store.CreateCharacter(newTestCharacter("lost", "ATLANTIS", 0, 0))

	scheduler := NewMigrationScheduler(store, registry, sink, time.Second, 1.0, 5)
	scheduler.Tick()

	moves, _ := sink.snapshot()
	assert.Empty(t, moves, "Персонаж в незарегистрированной зоне не мигрирует")

	stored, _ := store.Character(ch.ID)
	assert.Equal(t, "ATLANTIS", stored.CurrentZone)
}

func TestMigrationScheduler_OverlappingTickSkipped(t *testing.T) {
	registry := NewZoneRegistry()
	store := NewCharacterStore()
	sink := &recordingSink{blockCh: make(chan struct{})}

	populateStore(store, registry, 10)

	scheduler := NewMigrationScheduler(store, registry, sink, time.Second, 0, 9)

	firstDone := make(chan struct{})
	go func() {
		scheduler.Tick() // зависнет в PopulationUpdate
		close(firstDone)
	}()

	// Ждем, пока первый тик дойдет до публикации населенности
	require.Eventually(t, func() bool {
		return scheduler.inProgress.Load()
	}, time.Second, 5*time.Millisecond)

	// Второй тик поверх незавершенного должен быть пропущен
	scheduler.Tick()

	close(sink.blockCh)
	<-firstDone

	_, pops := sink.snapshot()
	assert.Len(t, pops, 1, "Наложившийся тик не публикует второй снимок")
}
