package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/radieske/quiniela-backoffice/internal/quiniela"
	"github.com/radieske/quiniela-backoffice/internal/settlement"
)

type FechaRecalculator interface {
	RecalcularFecha(ctx context.Context, fecha string) (settlement.FanOutReport, error)
}

// Cierre é o fechamento do dia: recalcula todos os agentes com atividade na data corrente
// (horário de Buenos Aires). Cobre eventos perdidos ao longo do dia.
type Cierre struct {
	Log     *zap.Logger
	Recalc  FechaRecalculator
	Timeout time.Duration
	Now     func() time.Time

	OnRun func(rep settlement.FanOutReport, err error)
}

// Fecha retorna a data de negócio corrente
func (c *Cierre) Fecha() string {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().In(quiniela.Location()).Format(quiniela.FechaLayout)
}

// Run executa um fechamento; chamado pelo cron
func (c *Cierre) Run(ctx context.Context) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	fecha := c.Fecha()
	c.Log.Info("cierre del dia", zap.String("fecha", fecha))

	rep, err := c.Recalc.RecalcularFecha(ctx, fecha)
	if err != nil {
		c.Log.Error("cierre con fallas", zap.String("fecha", fecha), zap.Int("fallidos", len(rep.Fallidos)), zap.Error(err))
	} else {
		c.Log.Info("cierre ok", zap.String("fecha", fecha), zap.Int("agentes", rep.Agentes))
	}
	if c.OnRun != nil {
		c.OnRun(rep, err)
	}
}

// Start agenda o fechamento pela expressão cron (aceita prefixo CRON_TZ=).
// O chamador faz Stop no encerramento.
func (c *Cierre) Start(ctx context.Context, expr string) (*cron.Cron, error) {
	cr := cron.New()
	if _, err := cr.AddFunc(expr, func() { c.Run(ctx) }); err != nil {
		return nil, fmt.Errorf("expressão cron %q: %w", expr, err)
	}
	cr.Start()
	return cr, nil
}
