package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/annel0/shape-world/internal/eventbus"
	"github.com/annel0/shape-world/internal/logging"
	"github.com/annel0/shape-world/internal/world"
)

// Конфигурация WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшене следует ограничить доступ
	},
}

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 256
)

// Client представляет подключенного подписчика
type Client struct {
	conn *websocket.Conn // WebSocket соединение
	send chan []byte     // Канал для отправки сообщений
	id   string          // Уникальный идентификатор
}

// Hub ведет реестр живых подписчиков и рассылает им типизированные
// события мира. Состояние реестра принадлежит горутине run:
// регистрация, отключение и рассылка сериализуются через каналы,
// поэтому каждый подписчик получает события в порядке публикации.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	store      *world.CharacterStore
	aggregator *world.PopulationAggregator
	log        *logging.Logger

	mu      sync.RWMutex // только для счетчика подписчиков
	count   int
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
}

// NewHub создает хаб поверх хранилища и агрегатора населенности
func NewHub(store *world.CharacterStore, aggregator *world.PopulationAggregator) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, sendBuffer),
		store:      store,
		aggregator: aggregator,
		log:        logging.GetRealtimeLogger(),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start запускает цикл обработки подписчиков
func (h *Hub) Start() {
	if h.started {
		return
	}
	h.started = true
	go h.run()
	h.log.Info("📡 Realtime хаб запущен")
}

// Stop останавливает цикл и закрывает все соединения
func (h *Hub) Stop() {
	if !h.started {
		return
	}
	close(h.stopCh)
	<-h.doneCh
	h.log.Info("📡 Realtime хаб остановлен")
}

// run обрабатывает регистрацию, отключение и рассылку.
// Начальное состояние нового подписчика ставится в его очередь здесь же,
// поэтому оно всегда предшествует последующим broadcast'ам.
// Канал broadcast буферизован: событие, опубликованное до регистрации,
// может дойти до подписчика уже после снимка и продублировать его
// содержимое (например, character_created для персонажа, который уже
// есть в characters_update). Снимок идемпотентен, клиенту это не вредит.
func (h *Hub) run() {
	defer func() {
		for id, client := range h.clients {
			close(client.send)
			delete(h.clients, id)
		}
		h.setCount(0)
		close(h.doneCh)
	}()

	for {
		select {
		case <-h.stopCh:
			return

		case client := <-h.register:
			h.clients[client.id] = client
			h.setCount(len(h.clients))
			h.enqueueInitialState(client)
			h.log.Debug("Подписчик подключен: %s (всего %d)", client.id, len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client.id]; ok {
				close(client.send)
				delete(h.clients, client.id)
				h.setCount(len(h.clients))
				h.log.Debug("Подписчик отключен: %s (всего %d)", client.id, len(h.clients))
			}

		case message := <-h.broadcast:
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Переполненная очередь — подписчик мертв, выбрасываем
					close(client.send)
					delete(h.clients, id)
					h.setCount(len(h.clients))
					h.log.Warn("Подписчик %s не успевает, отключен", id)
				}
			}
		}
	}
}

// enqueueInitialState отправляет новому подписчику полный снимок:
// characters_update, затем population_update
func (h *Hub) enqueueInitialState(client *Client) {
	for _, ev := range []Event{
		NewCharactersUpdate(h.store.Characters()),
		NewPopulationUpdate(h.aggregator.PopulationByZone()),
	} {
		data, err := json.Marshal(ev)
		if err != nil {
			h.log.Error("Ошибка сериализации начального состояния: %v", err)
			continue
		}
		select {
		case client.send <- data:
		default:
			return
		}
	}
}

// Broadcast сериализует событие один раз, рассылает всем подписчикам
// и зеркалирует его в шину событий
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("Ошибка сериализации события %s: %v", ev.EventType(), err)
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.stopCh:
		return
	}

	if err := eventbus.Publish(context.Background(), eventbus.NewEnvelope(ev.EventType(), "realtime", data)); err != nil {
		h.log.Warn("Публикация %s в шину событий не удалась: %v", ev.EventType(), err)
	}
}

// CharacterMoved реализует world.EventSink
func (h *Hub) CharacterMoved(ch world.Character) {
	h.Broadcast(NewCharacterMoved(ch))
}

// PopulationUpdate реализует world.EventSink
func (h *Hub) PopulationUpdate(population map[string]int) {
	h.Broadcast(NewPopulationUpdate(population))
}

// SubscriberCount возвращает число подключенных подписчиков
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

// HandleConnection обрабатывает новое WebSocket подключение
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Ошибка апгрейда соединения: %v", err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		id:   uuid.NewString(),
	}

	select {
	case h.register <- client:
	case <-h.stopCh:
		conn.Close()
		return
	}

	// Запускаем горутины для чтения и записи
	go h.readPump(client)
	go h.writePump(client)
}

// readPump вычитывает входящий трафик до закрытия соединения.
// Клиентских сообщений на канале нет — все входящее отбрасывается,
// но чтение нужно для обработки pong и сигнала закрытия.
func (h *Hub) readPump(client *Client) {
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.stopCh:
		}
		client.conn.Close()
	}()

	client.conn.SetReadLimit(4096)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug("Ошибка чтения от %s: %v", client.id, err)
			}
			return
		}
	}
}

// writePump асинхронно отправляет сообщения подписчику
func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Канал закрыт хабом
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
