package feed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Representa uma conexão de cliente WebSocket
type clientConn struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex // gorilla não aceita escritas concorrentes
}

// Hub gerencia os clientes conectados e faz broadcast dos extratos
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*clientConn
	log     *zap.Logger

	OnConnect func(delta int) // métricas (+1/-1)
	OnSent    func()
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{clients: make(map[string]*clientConn), log: log}
}

func (h *Hub) add(c *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
	if h.OnConnect != nil {
		h.OnConnect(1)
	}
	h.log.Info("ws client connected", zap.String("client_id", c.id))
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		if h.OnConnect != nil {
			h.OnConnect(-1)
		}
		h.log.Info("ws client disconnected", zap.String("client_id", id))
	}
}

// Clients retorna quantos clientes estão conectados
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast envia a mensagem para todos os clientes conectados
func (h *Hub) Broadcast(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		h.log.Error("marshal broadcast", zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.clients {
		c.mu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		c.mu.Unlock()
		if err != nil {
			h.log.Warn("ws write failed", zap.String("client_id", id), zap.Error(err))
			_ = c.conn.Close()
			continue
		}
		if h.OnSent != nil {
			h.OnSent()
		}
	}
}

// ServeWS faz o upgrade e mantém o cliente até ele desconectar
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	c := &clientConn{id: uuid.NewString(), conn: conn}
	h.add(c)

	go func() {
		defer func() {
			h.remove(c.id)
			_ = conn.Close()
		}()
		for {
			// Lê e descarta mensagens do cliente para manter o socket limpo
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// PublishHandler recebe um extrato avulso (POST JSON) e repassa aos clientes.
// Útil para forçar cenários no ambiente local.
func (h *Hub) PublishHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var ev events.ExtractoPublicado
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if ev.Source == "" {
		ev.Source = "manual"
	}
	if ev.PublishedAt.IsZero() {
		ev.PublishedAt = time.Now().UTC()
	}
	h.Broadcast(ev)
	w.WriteHeader(http.StatusAccepted)
}
