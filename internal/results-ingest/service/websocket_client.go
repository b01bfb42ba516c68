package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/quiniela-backoffice/internal/quiniela"
	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

var ErrExtractoInvalido = errors.New("extracto invalido")

type Publisher interface {
	Publish(ctx context.Context, e events.ExtractoPublicado) error
}

// WSClient consome o feed de extratos via WebSocket e publica cada extrato no Kafka.
type WSClient struct {
	URL       string      // endpoint WebSocket do feed
	Log       *zap.Logger // Logger estruturado
	Publisher Publisher
	Backoff   time.Duration // espera entre reconexões (default 3s)

	OnReceived  func()
	OnRejected  func()
	OnPublished func()
}

// Start inicia o loop de conexão e escuta do WebSocket.
// Em caso de desconexão, tenta reconectar com backoff até o contexto ser cancelado.
func (c *WSClient) Start(ctx context.Context) {
	backoff := c.Backoff
	if backoff <= 0 {
		backoff = 3 * time.Second
	}
	for {
		if ctx.Err() != nil {
			c.Log.Info("context canceled, stopping WS client")
			return
		}
		if err := c.connectAndListen(ctx); err != nil {
			c.Log.Warn("connection closed", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(backoff):
			}
		}
	}
}

func (c *WSClient) connectAndListen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	c.Log.Info("connected to results feed", zap.String("url", c.URL))

	// ReadMessage não respeita ctx; fechar a conexão destrava a leitura
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		c.Handle(ctx, message)
	}
}

// Handle processa uma mensagem do feed: decodifica, normaliza e publica.
// Mensagem inválida é descartada com log; o feed segue.
func (c *WSClient) Handle(ctx context.Context, raw []byte) {
	hook(c.OnReceived)

	var ev events.ExtractoPublicado
	if err := json.Unmarshal(raw, &ev); err != nil {
		hook(c.OnRejected)
		c.Log.Warn("invalid message", zap.Error(err))
		return
	}
	ev, err := Normalize(ev)
	if err != nil {
		hook(c.OnRejected)
		c.Log.Warn("extracto rejected", zap.Error(err))
		return
	}

	if err := c.Publisher.Publish(ctx, ev); err != nil {
		c.Log.Error("failed to publish to Kafka", zap.Error(err))
		return
	}
	hook(c.OnPublished)
}

// Normalize deixa o extrato na forma canônica usada no resto do sistema:
// sessão por ParseSorteo, província pelo nome canônico e números com quatro dígitos.
// Lista incompleta passa: o processor guarda como "ainda não sorteado".
func Normalize(ev events.ExtractoPublicado) (events.ExtractoPublicado, error) {
	if _, err := time.Parse(quiniela.FechaLayout, ev.Fecha); err != nil {
		return ev, fmt.Errorf("%w: fecha %q", ErrExtractoInvalido, ev.Fecha)
	}
	s, ok := quiniela.ParseSorteo(ev.Sorteo)
	if !ok {
		return ev, fmt.Errorf("%w: sorteo %q", ErrExtractoInvalido, ev.Sorteo)
	}
	ev.Sorteo = string(s)

	ev.Provincia = quiniela.CanonicalProvince(ev.Provincia)
	if ev.Provincia == "" {
		return ev, fmt.Errorf("%w: provincia vazia", ErrExtractoInvalido)
	}
	ev.Loteria = strings.ToUpper(strings.TrimSpace(ev.Loteria))
	if ev.Loteria == "" {
		ev.Loteria = ev.Provincia
	}

	if len(ev.Numeros) > quiniela.TotalUbicaciones {
		return ev, fmt.Errorf("%w: %d numeros", ErrExtractoInvalido, len(ev.Numeros))
	}
	nums := make([]string, len(ev.Numeros))
	for i, n := range ev.Numeros {
		n = strings.TrimSpace(n)
		if len(n) > 0 && len(n) < 4 && isDigits(n) {
			n = strings.Repeat("0", 4-len(n)) + n
		}
		nums[i] = n
	}
	ev.Numeros = nums
	return ev, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func hook(f func()) {
	if f != nil {
		f()
	}
}
