package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/radieske/quiniela-backoffice/internal/quiniela"
	"github.com/radieske/quiniela-backoffice/internal/settlement"
	"github.com/radieske/quiniela-backoffice/internal/settlement/repo"
	"github.com/radieske/quiniela-backoffice/internal/shared/middleware"
)

// Recalculator é o serviço de fechamento (settlement.Service)
type Recalculator interface {
	Recalcular(ctx context.Context, agentID, fecha string) (settlement.Snapshot, error)
	RecalcularFecha(ctx context.Context, fecha string) (settlement.FanOutReport, error)
}

// ReadRepo lê os fechamentos persistidos
type ReadRepo interface {
	GetLiquidacion(ctx context.Context, agentID, fecha string) (quiniela.Liquidacion, error)
	GetSaldo(ctx context.Context, agentID, fecha string) (quiniela.Balance, error)
}

// Cache de leitura; opcional. Leitura e escrita usam a versão lida antes do repo,
// assim um recálculo concorrente nunca é sombreado pelo valor anterior.
type Cache interface {
	Version(ctx context.Context, agentID, fecha string) (string, error)
	GetLiquidacion(ctx context.Context, agentID, fecha, version string) (quiniela.Liquidacion, bool, error)
	SetLiquidacion(ctx context.Context, agentID, fecha, version string, liq quiniela.Liquidacion) error
	GetSaldo(ctx context.Context, agentID, fecha, version string) (quiniela.Balance, bool, error)
	SetSaldo(ctx context.Context, agentID, fecha, version string, b quiniela.Balance) error
}

// API expõe consulta e recálculo de fechamentos
type API struct {
	Log      *zap.Logger
	Svc      Recalculator
	ReadRepo ReadRepo
	Cache    Cache
	Limiter  *middleware.RateLimiter // limita só os POST de recálculo
	Origins  []string
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	origins := a.Origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	r.Get("/v1/liquidaciones/{agente}/{fecha}", a.getLiquidacion)
	r.Get("/v1/saldos/{agente}/{fecha}", a.getSaldo)

	r.Group(func(r chi.Router) {
		if a.Limiter != nil {
			r.Use(a.Limiter.Handler)
		}
		r.Post("/v1/recalculos/{agente}/{fecha}", a.recalcular)
		r.Post("/v1/recalculos/{fecha}", a.recalcularFecha)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func validFecha(f string) bool {
	_, err := time.Parse(quiniela.FechaLayout, f)
	return err == nil
}

// getLiquidacion retorna os acertos do dia, preferencialmente do cache
func (a *API) getLiquidacion(w http.ResponseWriter, r *http.Request) {
	agente, fecha := chi.URLParam(r, "agente"), chi.URLParam(r, "fecha")
	if !validFecha(fecha) {
		writeError(w, http.StatusBadRequest, settlement.ErrInvalidFecha.Error())
		return
	}

	version, cached := a.version(r.Context(), agente, fecha)
	if cached {
		if liq, ok, _ := a.Cache.GetLiquidacion(r.Context(), agente, fecha, version); ok {
			writeJSON(w, http.StatusOK, liq)
			return
		}
	}

	liq, err := a.ReadRepo.GetLiquidacion(r.Context(), agente, fecha)
	if err != nil {
		a.fail(w, err)
		return
	}
	if cached {
		_ = a.Cache.SetLiquidacion(r.Context(), agente, fecha, version, liq)
	}
	writeJSON(w, http.StatusOK, liq)
}

// getSaldo retorna o snapshot de saldo do dia
func (a *API) getSaldo(w http.ResponseWriter, r *http.Request) {
	agente, fecha := chi.URLParam(r, "agente"), chi.URLParam(r, "fecha")
	if !validFecha(fecha) {
		writeError(w, http.StatusBadRequest, settlement.ErrInvalidFecha.Error())
		return
	}

	version, cached := a.version(r.Context(), agente, fecha)
	if cached {
		if b, ok, _ := a.Cache.GetSaldo(r.Context(), agente, fecha, version); ok {
			writeJSON(w, http.StatusOK, b)
			return
		}
	}

	b, err := a.ReadRepo.GetSaldo(r.Context(), agente, fecha)
	if err != nil {
		a.fail(w, err)
		return
	}
	if cached {
		_ = a.Cache.SetSaldo(r.Context(), agente, fecha, version, b)
	}
	writeJSON(w, http.StatusOK, b)
}

// version lê a versão do cache; sem cache ou com Redis fora, vai direto ao repo
func (a *API) version(ctx context.Context, agente, fecha string) (string, bool) {
	if a.Cache == nil {
		return "", false
	}
	v, err := a.Cache.Version(ctx, agente, fecha)
	if err != nil {
		return "", false
	}
	return v, true
}

// recalcular refaz o fechamento de um agente e devolve o snapshot novo
func (a *API) recalcular(w http.ResponseWriter, r *http.Request) {
	snap, err := a.Svc.Recalcular(r.Context(), chi.URLParam(r, "agente"), chi.URLParam(r, "fecha"))
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// recalcularFecha refaz o fechamento de todos os agentes da data.
// Falhas parciais respondem 207 com o relatório.
func (a *API) recalcularFecha(w http.ResponseWriter, r *http.Request) {
	rep, err := a.Svc.RecalcularFecha(r.Context(), chi.URLParam(r, "fecha"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, rep)
	case len(rep.Fallidos) > 0:
		writeJSON(w, http.StatusMultiStatus, rep)
	default:
		a.fail(w, err)
	}
}

func (a *API) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, settlement.ErrInvalidFecha), errors.Is(err, settlement.ErrAgenteVacio):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		if a.Log != nil {
			a.Log.Error("settlement api", zap.Error(err))
		}
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
