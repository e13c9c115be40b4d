package world

import (
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/annel0/shape-world/internal/logging"
)

// EventSink получает события мира для доставки подписчикам.
// Реализуется realtime-хабом; планировщик не знает о транспорте.
type EventSink interface {
	CharacterMoved(ch Character)
	PopulationUpdate(population map[string]int)
}

// MigrationScheduler периодически переселяет часть персонажей
// в случайные зоны. Миграция независима по персонажам: без
// поиска пути, коллизий и графа соседства — O(персонажей) за тик.
type MigrationScheduler struct {
	store       *CharacterStore
	registry    *ZoneRegistry
	aggregator  *PopulationAggregator
	sink        EventSink
	interval    time.Duration
	probability float64
	rng         *rand.Rand
	log         *logging.Logger

	// Тик не реентерабелен: если предыдущий еще выполняется,
	// очередное срабатывание пропускается целиком.
	inProgress atomic.Bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewMigrationScheduler создает планировщик с заданным периодом,
// вероятностью миграции за тик и seed'ом генератора случайных чисел.
// Фиксированный seed дает воспроизводимую последовательность переселений.
func NewMigrationScheduler(store *CharacterStore, registry *ZoneRegistry, sink EventSink, interval time.Duration, probability float64, seed int64) *MigrationScheduler {
	return &MigrationScheduler{
		store:       store,
		registry:    registry,
		aggregator:  NewPopulationAggregator(registry, store),
		sink:        sink,
		interval:    interval,
		probability: probability,
		rng:         rand.New(rand.NewSource(seed)),
		log:         logging.GetWorldLogger(),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start запускает цикл тиков в отдельной горутине
func (ms *MigrationScheduler) Start() {
	go ms.run()
	ms.log.Info("🔄 Планировщик миграции запущен: период=%s, вероятность=%.2f", ms.interval, ms.probability)
}

// Stop останавливает цикл и дожидается завершения текущего тика
func (ms *MigrationScheduler) Stop() {
	close(ms.stopCh)
	<-ms.doneCh
	ms.log.Info("🔄 Планировщик миграции остановлен")
}

func (ms *MigrationScheduler) run() {
	ticker := time.NewTicker(ms.interval)
	defer ticker.Stop()
	defer close(ms.doneCh)

	for {
		select {
		case <-ms.stopCh:
			return
		case <-ticker.C:
			ms.Tick()
		}
	}
}

// Tick выполняет один проход миграции. Экспортирован для
// детерминированных тестов: вызов с фиксированным seed воспроизводим.
func (ms *MigrationScheduler) Tick() {
	if !ms.inProgress.CompareAndSwap(false, true) {
		ms.log.Warn("Тик миграции пропущен: предыдущий еще выполняется")
		return
	}
	defer ms.inProgress.Store(false)

	characters := ms.store.Characters()
	zones := ms.registry.Zones()
	if len(zones) == 0 {
		return
	}

	moved := 0
	for _, ch := range characters {
		if ms.rng.Float64() >= ms.probability {
			continue
		}

		// Персонаж в незарегистрированной зоне не мигрирует
		if _, ok := ms.registry.Zone(ch.CurrentZone); !ok {
			ms.log.Debug("Персонаж %d в неизвестной зоне %q, миграция пропущена", ch.ID, ch.CurrentZone)
			continue
		}

		// Назначение выбирается равномерно из полного списка зон,
		// включая текущую: самопереход остается no-op
		dest := zones[ms.rng.Intn(len(zones))]
		if dest.Name == ch.CurrentZone {
			continue
		}

		x, y := dest.RandomPoint(ms.rng)
		name := dest.Name
		updated, ok := ms.store.UpdateCharacter(ch.ID, CharacterUpdate{
			CurrentZone: &name,
			X:           &x,
			Y:           &y,
		})
		if !ok {
			// Персонаж исчез между снимком и обновлением —
			// продолжаем тик с остальными
			ms.log.Warn("Миграция персонажа %d не удалась: запись не найдена", ch.ID)
			continue
		}

		moved++
		if ms.sink != nil {
			ms.sink.CharacterMoved(updated)
		}
	}

	if ms.sink != nil {
		ms.sink.PopulationUpdate(ms.aggregator.PopulationByZone())
	}

	if moved > 0 {
		ms.log.Debug("Тик миграции: переселено %d из %d персонажей", moved, len(characters))
	}
}
