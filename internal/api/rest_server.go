package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/shape-world/internal/logging"
	"github.com/annel0/shape-world/internal/middleware"
	"github.com/annel0/shape-world/internal/realtime"
	"github.com/annel0/shape-world/internal/world"
)

// RestServer — внешняя граница системы: REST API плюс WebSocket канал.
// Транслирует действия клиентов в вызовы хранилища, агрегатора и хаба.
type RestServer struct {
	router     *gin.Engine
	store      *world.CharacterStore
	registry   *world.ZoneRegistry
	aggregator *world.PopulationAggregator
	hub        *realtime.Hub
	port       string
	metrics    *ServerMetrics
	httpServer *http.Server
}

// Config содержит зависимости REST сервера.
// Все компоненты конструируются на старте и внедряются явно.
type Config struct {
	Port       string
	Store      *world.CharacterStore
	Registry   *world.ZoneRegistry
	Aggregator *world.PopulationAggregator
	Hub        *realtime.Hub
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}

	// Устанавливаем режим релиза для gin
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	loggerMw := middleware.NewRequestLogger()
	router.Use(loggerMw.Handler())

	router.Use(otelgin.Middleware("world_api"))

	promMw := middleware.NewPrometheusMiddleware("world_api")
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	server := &RestServer{
		router:     router,
		store:      config.Store,
		registry:   config.Registry,
		aggregator: config.Aggregator,
		hub:        config.Hub,
		port:       config.Port,
		metrics:    NewServerMetrics(),
	}

	// Настраиваем маршруты
	server.setupRoutes()

	return server
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	// Middleware для CORS
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Группа API
	api := rs.router.Group("/api")
	{
		api.GET("/characters", rs.handleGetCharacters)
		api.GET("/characters/:id", rs.handleGetCharacter)
		api.POST("/characters", rs.handleCreateCharacter)
		api.GET("/zones", rs.handleGetZones)
		api.GET("/population", rs.handleGetPopulation)
		api.GET("/server", rs.handleServerInfo)
	}

	// Realtime канал
	rs.router.GET("/ws", func(c *gin.Context) {
		rs.hub.HandleConnection(c.Writer, c.Request)
	})

	// Health check
	rs.router.GET("/health", rs.handleHealth)
}

// CreateCharacterRequest — входной контракт создания персонажа.
// Позиция клиентом не задается: сервер сам размещает персонажа
// в случайной точке стартовой зоны.
type CreateCharacterRequest struct {
	Name        string `json:"name" binding:"omitempty,max=16"`
	Creator     string `json:"creator" binding:"required,max=20"`
	Shape       string `json:"shape" binding:"required,oneof=circle square triangle diamond"`
	Color       string `json:"color" binding:"required"`
	Size        string `json:"size" binding:"required,oneof=small medium large"`
	CurrentZone string `json:"currentZone" binding:"required"`
}

// ErrorResponse — тело ответа при ошибке
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// handleGetCharacters возвращает полный список персонажей
func (rs *RestServer) handleGetCharacters(c *gin.Context) {
	c.JSON(http.StatusOK, rs.store.Characters())
}

// handleGetCharacter возвращает персонажа по id
func (rs *RestServer) handleGetCharacter(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Character not found"})
		return
	}

	ch, ok := rs.store.Character(id)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Character not found"})
		return
	}

	c.JSON(http.StatusOK, ch)
}

// handleCreateCharacter валидирует вход, размещает персонажа в стартовой
// зоне и оповещает всех подписчиков
func (rs *RestServer) handleCreateCharacter(c *gin.Context) {
	var req CreateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid character data",
			Error:   err.Error(),
		})
		return
	}

	// Неизвестная стартовая зона заменяется первой зарегистрированной
	zone, ok := rs.registry.Zone(req.CurrentZone)
	if !ok {
		zone = rs.registry.First()
	}
	x, y := zone.RandomPoint(nil)

	ch := rs.store.CreateCharacter(world.CharacterData{
		Name:        req.Name,
		Creator:     req.Creator,
		Shape:       req.Shape,
		Color:       req.Color,
		Size:        req.Size,
		X:           x,
		Y:           y,
		CurrentZone: zone.Name,
	})

	logging.Info("✨ Создан персонаж %d (%s) в зоне %s", ch.ID, ch.Creator, ch.CurrentZone)

	rs.hub.Broadcast(realtime.NewCharacterCreated(ch))
	rs.hub.Broadcast(realtime.NewPopulationUpdate(rs.aggregator.PopulationByZone()))

	c.JSON(http.StatusCreated, ch)
}

// handleGetZones возвращает все зоны реестра
func (rs *RestServer) handleGetZones(c *gin.Context) {
	c.JSON(http.StatusOK, rs.registry.Zones())
}

// handleGetPopulation возвращает срез населенности по зонам
func (rs *RestServer) handleGetPopulation(c *gin.Context) {
	c.JSON(http.StatusOK, rs.aggregator.PopulationByZone())
}

// handleServerInfo возвращает информацию и метрики сервера
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	memoryMB, _ := rs.metrics.GetMemoryUsage()
	cpuPercent, _ := rs.metrics.GetCPUUsage()

	c.JSON(http.StatusOK, gin.H{
		"name":        "Shape World Server",
		"status":      "running",
		"uptime":      rs.metrics.GetUptime(),
		"memory_mb":   fmt.Sprintf("%.1f", memoryMB),
		"cpu_percent": fmt.Sprintf("%.1f", cpuPercent),
		"characters":  rs.store.Count(),
		"subscribers": rs.hub.SubscriberCount(),
		"memory":      rs.metrics.GetDetailedMemoryStats(),
		"server_time": time.Now().Unix(),
	})
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// Router возвращает gin.Engine (для httptest)
func (rs *RestServer) Router() *gin.Engine {
	return rs.router
}

// Start запускает REST сервер в отдельной горутине
func (rs *RestServer) Start() error {
	rs.httpServer = &http.Server{
		Addr:    rs.port,
		Handler: rs.router,
	}

	go func() {
		if err := rs.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка HTTP сервера: %v", err)
		}
	}()
	return nil
}

// Stop корректно останавливает REST сервер
func (rs *RestServer) Stop() error {
	if rs.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return rs.httpServer.Shutdown(ctx)
}
