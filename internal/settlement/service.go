package settlement

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/radieske/quiniela-backoffice/internal/quiniela"
	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

var (
	ErrInvalidFecha = errors.New("fecha inválida")
	ErrAgenteVacio  = errors.New("agente obrigatório")
)

const defaultParalelos = 4

// BetReader lê as apostas do dia (incluindo anuladas; o agregador as descarta)
type BetReader interface {
	ListApuestas(ctx context.Context, agentID, fecha string) ([]quiniela.Bet, error)
	AgentesConActividad(ctx context.Context, fecha string) ([]string, error)
}

type ExtractoReader interface {
	ListExtractos(ctx context.Context, fecha string) ([]quiniela.Extracto, error)
}

// LedgerReader devolve os totais de pagos e cobros do dia, já prontos
type LedgerReader interface {
	Totales(ctx context.Context, agentID, fecha string) (pagado, cobrado decimal.Decimal, err error)
}

// Store persiste o fechamento e fornece os insumos do agente
type Store interface {
	SaldoDe(ctx context.Context, agentID, fecha string) (decimal.Decimal, error)
	ComisionPct(ctx context.Context, agentID string) (decimal.Decimal, error)
	Save(ctx context.Context, agentID, fecha string, liq quiniela.Liquidacion, bal quiniela.Balance) error
}

// Invalidator descarta leituras em cache de (agente, fecha)
type Invalidator interface {
	Invalidate(ctx context.Context, agentID, fecha string) error
}

// Notifier anuncia um saldo recalculado
type Notifier interface {
	NotifySaldo(ctx context.Context, ev events.SaldoActualizado) error
}

// Snapshot é o resultado completo de um recálculo
type Snapshot struct {
	AgentID     string               `json:"agente"`
	Fecha       string               `json:"fecha"`
	Liquidacion quiniela.Liquidacion `json:"liquidacion"`
	Balance     quiniela.Balance     `json:"balance"`
}

// Service orquestra o recálculo (agente, fecha): lê insumos, cruza, fecha o saldo e persiste.
// Cache e Notifier são opcionais.
type Service struct {
	Log       *zap.Logger
	Bets      BetReader
	Extractos ExtractoReader
	Ledger    LedgerReader
	Store     Store
	Cache     Invalidator
	Notifier  Notifier

	Parallelism int

	OnRecalculo func(d time.Duration, err error) // métricas
}

// Recalcular refaz do zero os acertos e o saldo de um agente em uma data
func (s *Service) Recalcular(ctx context.Context, agentID, fecha string) (Snapshot, error) {
	start := time.Now()
	snap, err := s.recalcular(ctx, agentID, fecha)
	if s.OnRecalculo != nil {
		s.OnRecalculo(time.Since(start), err)
	}
	return snap, err
}

func (s *Service) recalcular(ctx context.Context, agentID, fecha string) (Snapshot, error) {
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return Snapshot{}, ErrAgenteVacio
	}
	anterior, err := quiniela.PreviousFecha(fecha)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrInvalidFecha, fecha)
	}

	bets, err := s.Bets.ListApuestas(ctx, agentID, fecha)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list apuestas: %w", err)
	}
	exts, err := s.Extractos.ListExtractos(ctx, fecha)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list extractos: %w", err)
	}
	pagado, cobrado, err := s.Ledger.Totales(ctx, agentID, fecha)
	if err != nil {
		return Snapshot{}, fmt.Errorf("ledger totales: %w", err)
	}
	saldoAnterior, err := s.Store.SaldoDe(ctx, agentID, anterior)
	if err != nil {
		return Snapshot{}, fmt.Errorf("saldo anterior: %w", err)
	}
	pct, err := s.Store.ComisionPct(ctx, agentID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("comision: %w", err)
	}

	liq := quiniela.Aggregate(bets, exts, s.logger())
	bal := quiniela.ComputeBalance(quiniela.BalanceInput{
		SaldoAnterior: saldoAnterior,
		Jugado:        liq.Jugado,
		ComisionPct:   pct,
		Premios:       liq.Premios,
		Pagado:        pagado,
		Cobrado:       cobrado,
	})

	if err := s.Store.Save(ctx, agentID, fecha, liq, bal); err != nil {
		return Snapshot{}, fmt.Errorf("save: %w", err)
	}

	// a partir daqui o fechamento já está gravado; falhas só geram aviso
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, agentID, fecha); err != nil {
			s.logger().Warn("cache invalidate failed", zap.String("agente", agentID), zap.String("fecha", fecha), zap.Error(err))
		}
	}
	if s.Notifier != nil {
		ev := events.SaldoActualizado{
			AgentID:  agentID,
			Fecha:    fecha,
			Saldo:    bal.Saldo,
			Premios:  bal.Premios,
			Aciertos: liq.Count(),
		}
		if err := s.Notifier.NotifySaldo(ctx, ev); err != nil {
			s.logger().Warn("saldo notify failed", zap.String("agente", agentID), zap.Error(err))
		}
	}

	s.logger().Info("recalculo ok",
		zap.String("agente", agentID),
		zap.String("fecha", fecha),
		zap.Int("apuestas", liq.Apuestas),
		zap.Int("aciertos", liq.Count()),
		zap.String("premios", liq.Premios.StringFixed(2)),
		zap.String("saldo", bal.Saldo.StringFixed(2)),
	)

	return Snapshot{AgentID: agentID, Fecha: fecha, Liquidacion: liq, Balance: bal}, nil
}

// FanOutReport resume um recálculo de todos os agentes de uma data
type FanOutReport struct {
	Fecha    string            `json:"fecha"`
	Agentes  int               `json:"agentes"`
	OK       []string          `json:"ok"`
	Fallidos map[string]string `json:"fallidos,omitempty"`
}

// RecalcularFecha recalcula cada agente com atividade na data, com paralelismo limitado.
// Uma falha não interrompe os demais; o erro devolvido agrega todas as falhas.
func (s *Service) RecalcularFecha(ctx context.Context, fecha string) (FanOutReport, error) {
	if _, err := quiniela.PreviousFecha(fecha); err != nil {
		return FanOutReport{}, fmt.Errorf("%w: %q", ErrInvalidFecha, fecha)
	}

	agentes, err := s.Bets.AgentesConActividad(ctx, fecha)
	if err != nil {
		return FanOutReport{}, fmt.Errorf("agentes con actividad: %w", err)
	}

	rep := FanOutReport{Fecha: fecha, Agentes: len(agentes), OK: []string{}}

	var (
		mu   sync.Mutex
		errs error
		g    errgroup.Group
	)
	limit := s.Parallelism
	if limit <= 0 {
		limit = defaultParalelos
	}
	g.SetLimit(limit)

	for _, ag := range agentes {
		ag := ag
		g.Go(func() error {
			_, err := s.Recalcular(ctx, ag, fecha)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if rep.Fallidos == nil {
					rep.Fallidos = map[string]string{}
				}
				rep.Fallidos[ag] = err.Error()
				errs = multierr.Append(errs, fmt.Errorf("agente %s: %w", ag, err))
				return nil
			}
			rep.OK = append(rep.OK, ag)
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(rep.OK)
	if errs != nil {
		s.logger().Warn("recalculo por fecha com falhas",
			zap.String("fecha", fecha),
			zap.Int("fallidos", len(rep.Fallidos)),
			zap.Int("ok", len(rep.OK)),
		)
	}
	return rep, errs
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
