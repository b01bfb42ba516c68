package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/quiniela-backoffice/internal/ledger-service/dto"
	"github.com/radieske/quiniela-backoffice/internal/ledger-service/repo"
	"github.com/radieske/quiniela-backoffice/internal/quiniela"
	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

// Repo define as operações do ledger usadas pelo handler HTTP
type Repo interface {
	Registrar(ctx context.Context, m repo.Movimiento) (repo.Movimiento, bool, error)
	Totales(ctx context.Context, agentID, fecha string) (repo.Totales, error)
	List(ctx context.Context, agentID, fecha string) ([]repo.Movimiento, error)
}

type Publisher interface {
	PublishMovimiento(ctx context.Context, e events.MovimientoRegistrado) error
}

// Server expõe o ledger de pagos/cobros
type Server struct {
	log  *zap.Logger
	repo Repo
	publ Publisher
}

func NewServer(log *zap.Logger, repo Repo, publ Publisher) *Server {
	return &Server{log: log, repo: repo, publ: publ}
}

// Router retorna o mux HTTP com as rotas do ledger
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/movimientos/pagos", s.registrar(events.MovimientoPago))   // POST
	mux.HandleFunc("/movimientos/cobros", s.registrar(events.MovimientoCobro)) // POST
	mux.HandleFunc("/movimientos/totales", s.totales)                          // GET ?agente=&fecha=
	mux.HandleFunc("/movimientos", s.list)                                     // GET ?agente=&fecha=
	return mux
}

// registrar grava um pago ou cobro; pedidos repetidos (mesmo external_ref) não geram evento
func (s *Server) registrar(tipo string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req dto.MovimientoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		req.AgentID = strings.TrimSpace(req.AgentID)
		importe := quiniela.ParseImporte(req.Importe)
		if req.AgentID == "" || !validFecha(req.Fecha) || !importe.IsPositive() {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if req.ExternalRef == "" {
			req.ExternalRef = uuid.NewString()
		}

		m, created, err := s.repo.Registrar(r.Context(), repo.Movimiento{
			AgentID:     req.AgentID,
			Fecha:       req.Fecha,
			Tipo:        tipo,
			Importe:     importe,
			ExternalRef: req.ExternalRef,
			Descripcion: req.Descripcion,
		})
		if err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			s.log.Error("registrar movimiento", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
			ev := events.MovimientoRegistrado{
				AgentID:     m.AgentID,
				Fecha:       m.Fecha,
				Tipo:        m.Tipo,
				Importe:     m.Importe,
				ExternalRef: m.ExternalRef,
			}
			if err := s.publ.PublishMovimiento(r.Context(), ev); err != nil {
				// o movimento já está gravado; o fechamento noturno cobre o evento perdido
				s.log.Warn("publish movimiento_registrado", zap.String("external_ref", m.ExternalRef), zap.Error(err))
			}
		}
		writeJSON(w, status, toResponse(m, !created))
	}
}

func (s *Server) totales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	agente, fecha := r.URL.Query().Get("agente"), r.URL.Query().Get("fecha")
	if agente == "" || !validFecha(fecha) {
		http.Error(w, "agente and fecha required", http.StatusBadRequest)
		return
	}
	t, err := s.repo.Totales(r.Context(), agente, fecha)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dto.TotalesResponse{
		AgentID: agente, Fecha: fecha,
		Pagado: t.Pagado, Cobrado: t.Cobrado,
		Pagos: t.Pagos, Cobros: t.Cobros,
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	agente, fecha := r.URL.Query().Get("agente"), r.URL.Query().Get("fecha")
	if agente == "" || !validFecha(fecha) {
		http.Error(w, "agente and fecha required", http.StatusBadRequest)
		return
	}
	ms, err := s.repo.List(r.Context(), agente, fecha)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.MovimientoResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toResponse(m, false))
	}
	writeJSON(w, http.StatusOK, out)
}

func toResponse(m repo.Movimiento, replay bool) dto.MovimientoResponse {
	return dto.MovimientoResponse{
		ID:          m.ID,
		AgentID:     m.AgentID,
		Fecha:       m.Fecha,
		Tipo:        m.Tipo,
		Importe:     m.Importe,
		ExternalRef: m.ExternalRef,
		Replay:      replay,
	}
}

func validFecha(f string) bool {
	_, err := time.Parse(quiniela.FechaLayout, f)
	return err == nil
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
