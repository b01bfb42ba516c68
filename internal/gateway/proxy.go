package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Targets são as URLs base dos serviços atrás do gateway
type Targets struct {
	Bets       string
	Ledger     string
	Settlement string
}

func rp(log *zap.Logger, name, to string) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(to)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: url invalida %q", name, to)
	}
	p := httputil.NewSingleHostReverseProxy(u)
	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn("upstream failed", zap.String("upstream", name), zap.String("path", r.URL.Path), zap.Error(err))
		w.WriteHeader(http.StatusBadGateway)
	}
	return p, nil
}

// New monta o roteamento /api/{bets,ledger,settlement}/* -> serviço, com CORS na borda
func New(log *zap.Logger, t Targets, origins []string) (http.Handler, error) {
	bets, err := rp(log, "bets", t.Bets)
	if err != nil {
		return nil, err
	}
	ledger, err := rp(log, "ledger", t.Ledger)
	if err != nil {
		return nil, err
	}
	settlement, err := rp(log, "settlement", t.Settlement)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	// bets (ex.: /api/bets/apuestas -> bet-service /apuestas)
	mux.Handle("/api/bets/", http.StripPrefix("/api/bets", bets))

	// ledger (ex.: /api/ledger/movimientos/pagos -> ledger-service)
	mux.Handle("/api/ledger/", http.StripPrefix("/api/ledger", ledger))

	// settlement (ex.: /api/settlement/v1/saldos/ag1/2024-05-10 -> settlement-service)
	mux.Handle("/api/settlement/", http.StripPrefix("/api/settlement", settlement))

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	})
	return c.Handler(mux), nil
}
