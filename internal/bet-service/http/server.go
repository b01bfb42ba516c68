package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/quiniela-backoffice/internal/bet-service/dto"
	"github.com/radieske/quiniela-backoffice/internal/bet-service/repo"
	"github.com/radieske/quiniela-backoffice/internal/quiniela"
	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

type Repo interface {
	Create(ctx context.Context, b *quiniela.Bet) error
	Get(ctx context.Context, seq int64) (repo.Cabecera, error)
	Anular(ctx context.Context, seq int64) (bool, error)
	List(ctx context.Context, agentID, fecha string) ([]quiniela.Bet, error)
}

type Publisher interface {
	PublishApuesta(ctx context.Context, e events.ApuestaRegistrada) error
}

// DrawChecker informa províncias cujo extrato já saiu para a sessão da aposta
type DrawChecker interface {
	Sorteados(ctx context.Context, b quiniela.Bet) ([]string, error)
}

type Server struct {
	log   *zap.Logger
	repo  Repo
	draws DrawChecker
	publ  Publisher
	now   func() time.Time
}

func NewServer(log *zap.Logger, r Repo, d DrawChecker, p Publisher) *Server {
	return &Server{log: log, repo: r, draws: d, publ: p, now: time.Now}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/apuestas", s.apuestas) // POST cria, GET ?agente=&fecha= lista
	mux.HandleFunc("/apuestas/", s.anular)  // POST /apuestas/{seq}/anular
	return mux
}

func (s *Server) apuestas(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.placeBet(w, r)
	case http.MethodGet:
		s.listBets(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse(quiniela.FechaLayout, req.Fecha); err != nil {
		http.Error(w, "invalid fecha", http.StatusBadRequest)
		return
	}
	bet, err := req.ToBet()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 1) Sessão fechada não aceita apostas
	if bet.Sorteo.Cerrado(bet.Fecha, s.now()) {
		http.Error(w, "sorteo cerrado", http.StatusConflict)
		return
	}

	// 2) Extrato já publicado para alguma província (feed adiantado)
	if s.draws != nil {
		provs, err := s.draws.Sorteados(r.Context(), bet)
		if err != nil {
			s.log.Warn("draw check failed", zap.Error(err)) // sem Redis vale só o horário
		} else if len(provs) > 0 {
			http.Error(w, "extracto ya publicado: "+strings.Join(provs, ","), http.StatusConflict)
			return
		}
	}

	// 3) Persiste
	if err := s.repo.Create(r.Context(), &bet); err != nil {
		s.log.Error("create apuesta", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// 4) Publica apuesta_registrada
	s.publish(r.Context(), bet.AgentID, bet.Fecha, bet.Seq, string(bet.Tipo()), events.AccionAlta)

	writeJSON(w, http.StatusCreated, dto.PlaceBetResponse{
		Seq:     bet.Seq,
		Tipo:    string(bet.Tipo()),
		Importe: bet.Importe(),
		Status:  "REGISTRADA",
	})
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	agente, fecha := r.URL.Query().Get("agente"), r.URL.Query().Get("fecha")
	if agente == "" || fecha == "" {
		http.Error(w, "agente and fecha required", http.StatusBadRequest)
		return
	}
	bets, err := s.repo.List(r.Context(), agente, fecha)
	if err != nil {
		s.log.Error("list apuestas", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, bets)
}

// anular é a única alteração permitida numa aposta, e só até o fechamento da sessão
func (s *Server) anular(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// path: /apuestas/{seq}/anular
	rest := strings.TrimPrefix(r.URL.Path, "/apuestas/")
	seqStr, ok := strings.CutSuffix(rest, "/anular")
	seq, err := strconv.ParseInt(seqStr, 10, 64)
	if !ok || err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	cab, err := s.repo.Get(r.Context(), seq)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !cab.Anulada && quiniela.Sorteo(cab.Sorteo).Cerrado(cab.Fecha, s.now()) {
		http.Error(w, "sorteo cerrado", http.StatusConflict)
		return
	}

	changed, err := s.repo.Anular(r.Context(), seq)
	if err != nil {
		s.log.Error("anular apuesta", zap.Int64("seq", seq), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if changed {
		s.publish(r.Context(), cab.AgentID, cab.Fecha, seq, cab.Tipo, events.AccionAnulacion)
	}
	writeJSON(w, http.StatusOK, dto.PlaceBetResponse{Seq: seq, Tipo: cab.Tipo, Status: "ANULADA"})
}

// publish não falha o pedido; o fechamento do dia recalcula todos os agentes
func (s *Server) publish(ctx context.Context, agentID, fecha string, seq int64, tipo, accion string) {
	err := s.publ.PublishApuesta(ctx, events.ApuestaRegistrada{
		AgentID: agentID,
		Fecha:   fecha,
		Seq:     seq,
		Tipo:    tipo,
		Accion:  accion,
	})
	if err != nil {
		s.log.Warn("publish apuesta_registrada", zap.Int64("seq", seq), zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
