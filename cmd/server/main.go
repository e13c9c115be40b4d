package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/shape-world/internal/api"
	"github.com/annel0/shape-world/internal/config"
	"github.com/annel0/shape-world/internal/eventbus"
	"github.com/annel0/shape-world/internal/logging"
	"github.com/annel0/shape-world/internal/observability"
	"github.com/annel0/shape-world/internal/realtime"
	"github.com/annel0/shape-world/internal/world"
)

func main() {
	// Инициализируем систему логирования
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🌍 Запуск Shape World Server...")

	// === КОНФИГУРАЦИЯ ===
	var cfg config.Config
	if loaded, err := config.Load(""); err != nil {
		logging.Warn("Конфиг не прочитан (%v), используем дефолты", err)
	} else if loaded != nil {
		cfg = *loaded
	}

	restAddr := fmt.Sprintf(":%d", cfg.Server.GetRESTPort())
	metricsAddr := fmt.Sprintf(":%d", cfg.Server.GetMetricsPort())
	logging.Info("📡 Конфигурация сервера: REST=%s, Metrics=%s", restAddr, metricsAddr)

	// === OBSERVABILITY ===
	ctx := context.Background()
	telemetryShutdown, err := observability.InitTelemetry(ctx, "shape-world")
	if err != nil {
		logging.Warn("OpenTelemetry не инициализирован: %v", err)
		telemetryShutdown = nil
	}

	// === ШИНА СОБЫТИЙ ===
	var bus eventbus.EventBus
	var jetBus *eventbus.JetStreamBus
	if cfg.EventBus.URL != "" {
		jetBus, err = eventbus.NewJetStreamBus(cfg.EventBus.URL, cfg.EventBus.Stream,
			time.Duration(cfg.EventBus.Retention)*time.Hour)
		if err != nil {
			logging.Error("❌ JetStream недоступен (%v), переключаемся на in-memory шину", err)
			bus = eventbus.NewMemoryBus(cfg.EventBus.GetBuffer())
		} else {
			logging.Info("✅ Шина событий: NATS JetStream (%s)", cfg.EventBus.URL)
			bus = jetBus
		}
	} else {
		bus = eventbus.NewMemoryBus(cfg.EventBus.GetBuffer())
		logging.Info("✅ Шина событий: in-memory (буфер %d)", cfg.EventBus.GetBuffer())
	}
	eventbus.Init(bus)

	if err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("LoggingListener не запущен: %v", err)
	}

	busMetrics := eventbus.NewMetricsExporter(bus)
	busMetrics.StartHTTP(metricsAddr)

	// === ИНИЦИАЛИЗАЦИЯ КОМПОНЕНТОВ ===

	// Реестр зон фиксируется на старте, хранилище живет в памяти процесса
	registry := world.NewZoneRegistry()
	store := world.NewCharacterStore()
	aggregator := world.NewPopulationAggregator(registry, store)
	logging.Debug("Реестр зон и хранилище персонажей созданы (%d зон)", len(registry.Zones()))

	// Realtime хаб
	hub := realtime.NewHub(store, aggregator)
	hub.Start()

	// Планировщик миграции
	seed := cfg.Migration.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	scheduler := world.NewMigrationScheduler(store, registry, hub,
		time.Duration(cfg.Migration.GetIntervalSeconds())*time.Second,
		cfg.Migration.GetProbability(), seed)
	scheduler.Start()

	// REST API сервер
	restServer := api.NewRestServer(api.Config{
		Port:       restAddr,
		Store:      store,
		Registry:   registry,
		Aggregator: aggregator,
		Hub:        hub,
	})
	if err := restServer.Start(); err != nil {
		logging.Error("❌ Ошибка запуска REST API: %v", err)
		log.Fatalf("❌ Ошибка запуска REST API: %v", err)
	}

	logging.Info("✅ Все сервисы запущены и готовы принимать соединения")
	logging.Info("   🌐 REST API: http://localhost%s/api", restAddr)
	logging.Info("   🔌 Realtime: ws://localhost%s/ws", restAddr)
	logging.Info("   📈 Метрики: http://localhost%s/metrics", metricsAddr)
	logging.Info("   ❤️  Health check: http://localhost%s/health", restAddr)

	// Канал для получения сигналов ОС
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Ждем сигнала для завершения
	sig := <-sigCh
	logging.Info("📡 Получен сигнал %v, завершение работы...", sig)

	// === GRACEFUL SHUTDOWN ===
	scheduler.Stop()
	hub.Stop()

	if err := restServer.Stop(); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}

	busMetrics.Stop()
	if jetBus != nil {
		jetBus.Close()
	}

	if telemetryShutdown != nil {
		if err := telemetryShutdown(ctx); err != nil {
			logging.Error("❌ Ошибка остановки телеметрии: %v", err)
		}
	}

	if err := logging.GetLoggerManager().CloseAll(); err != nil {
		logging.Error("❌ Ошибка закрытия компонентных логгеров: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}
