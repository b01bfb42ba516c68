package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Postgres implementa o ledger de pagos/cobros. Movimentos são imutáveis.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// ErrDuplicate indica external_ref já usado por outro movimento
var ErrDuplicate = errors.New("external_ref already used")

type Movimiento struct {
	ID          string
	AgentID     string
	Fecha       string
	Tipo        string // PAGO | COBRO
	Importe     decimal.Decimal
	ExternalRef string
	Descripcion string
	CreatedAt   time.Time
}

type Totales struct {
	Pagado  decimal.Decimal
	Cobrado decimal.Decimal
	Pagos   int
	Cobros  int
}

// Registrar grava o movimento. Idempotente por external_ref: o mesmo pedido
// repetido devolve o movimento original com created=false; external_ref
// reaproveitado com outros dados é ErrDuplicate.
func (p *Postgres) Registrar(ctx context.Context, m Movimiento) (out Movimiento, created bool, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Movimiento{}, false, err
	}
	defer tx.Rollback()

	var prev Movimiento
	err = tx.QueryRowContext(ctx, `
		SELECT id, agent_id, to_char(fecha, 'YYYY-MM-DD'), tipo, importe, external_ref, created_at
		FROM movimientos
		WHERE external_ref = $1`, m.ExternalRef).
		Scan(&prev.ID, &prev.AgentID, &prev.Fecha, &prev.Tipo, &prev.Importe, &prev.ExternalRef, &prev.CreatedAt)
	switch {
	case err == nil:
		if prev.AgentID != m.AgentID || prev.Fecha != m.Fecha || prev.Tipo != m.Tipo || !prev.Importe.Equal(m.Importe) {
			return Movimiento{}, false, ErrDuplicate
		}
		return prev, false, nil // já registrado
	case !errors.Is(err, sql.ErrNoRows):
		return Movimiento{}, false, err
	}

	m.ID = uuid.NewString()
	err = tx.QueryRowContext(ctx, `
		INSERT INTO movimientos (id, agent_id, fecha, tipo, importe, external_ref, descripcion)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at`,
		m.ID, m.AgentID, m.Fecha, m.Tipo, m.Importe, m.ExternalRef, m.Descripcion).Scan(&m.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return Movimiento{}, false, ErrDuplicate // corrida com outro pedido igual
		}
		return Movimiento{}, false, err
	}

	if err = tx.Commit(); err != nil {
		return Movimiento{}, false, err
	}
	return m, true, nil
}

// Totales: pagado = soma dos pagos; cobrado = maior cobro individual do dia
func (p *Postgres) Totales(ctx context.Context, agentID, fecha string) (Totales, error) {
	var t Totales
	err := p.db.QueryRowContext(ctx, `
		SELECT
		  COALESCE(SUM(importe) FILTER (WHERE tipo = 'PAGO'), 0),
		  COALESCE(MAX(importe) FILTER (WHERE tipo = 'COBRO'), 0),
		  COUNT(*) FILTER (WHERE tipo = 'PAGO'),
		  COUNT(*) FILTER (WHERE tipo = 'COBRO')
		FROM movimientos
		WHERE agent_id = $1 AND fecha = $2`, agentID, fecha).
		Scan(&t.Pagado, &t.Cobrado, &t.Pagos, &t.Cobros)
	return t, err
}

// List retorna os movimentos do agente na data em ordem de registro
func (p *Postgres) List(ctx context.Context, agentID, fecha string) ([]Movimiento, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, tipo, importe, external_ref, descripcion, created_at
		FROM movimientos
		WHERE agent_id = $1 AND fecha = $2
		ORDER BY created_at, id`, agentID, fecha)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Movimiento{}
	for rows.Next() {
		m := Movimiento{AgentID: agentID, Fecha: fecha}
		if err := rows.Scan(&m.ID, &m.Tipo, &m.Importe, &m.ExternalRef, &m.Descripcion, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
