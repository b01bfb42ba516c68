package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/radieske/quiniela-backoffice/internal/quiniela"
)

var ErrNotFound = errors.New("not found")

// Postgres lê os insumos do fechamento (apuestas, extractos, movimientos)
// e persiste liquidaciones e saldos
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// ListApuestas retorna todas as apostas do agente na data, anuladas inclusive, por seq.
// Documento ilegível vira aposta sem jogada (o agregador registra e ignora).
func (p *Postgres) ListApuestas(ctx context.Context, agentID, fecha string) ([]quiniela.Bet, error) {
	const q = `
		SELECT seq, sorteo, anulada, doc, created_at
		FROM apuestas
		WHERE agent_id = $1 AND fecha = $2
		ORDER BY seq`
	rows, err := p.db.QueryContext(ctx, q, agentID, fecha)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []quiniela.Bet
	for rows.Next() {
		var (
			seq       int64
			sorteo    string
			anulada   bool
			doc       []byte
			createdAt time.Time
		)
		if err := rows.Scan(&seq, &sorteo, &anulada, &doc, &createdAt); err != nil {
			return nil, err
		}
		var b quiniela.Bet
		if err := json.Unmarshal(doc, &b); err != nil {
			b = quiniela.Bet{}
		}
		// colunas prevalecem sobre o documento
		b.Seq = seq
		b.AgentID = agentID
		b.Fecha = fecha
		b.Sorteo = quiniela.Sorteo(sorteo)
		b.Anulada = anulada
		b.CreatedAt = createdAt
		out = append(out, b)
	}
	return out, rows.Err()
}

// AgentesConActividad lista agentes com apostas ou movimentos na data
func (p *Postgres) AgentesConActividad(ctx context.Context, fecha string) ([]string, error) {
	const q = `
		SELECT agent_id FROM apuestas WHERE fecha = $1
		UNION
		SELECT agent_id FROM movimientos WHERE fecha = $1
		ORDER BY agent_id`
	rows, err := p.db.QueryContext(ctx, q, fecha)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ListExtractos agrupa as linhas (fecha, provincia, sorteo) em um extrato por província
func (p *Postgres) ListExtractos(ctx context.Context, fecha string) ([]quiniela.Extracto, error) {
	const q = `
		SELECT provincia, loteria, sorteo, numeros
		FROM extractos
		WHERE fecha = $1
		ORDER BY provincia, sorteo`
	rows, err := p.db.QueryContext(ctx, q, fecha)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []quiniela.Extracto
	idx := map[string]int{}
	for rows.Next() {
		var (
			prov, lot, sorteo string
			numeros           []string
		)
		if err := rows.Scan(&prov, &lot, &sorteo, pq.Array(&numeros)); err != nil {
			return nil, err
		}
		i, ok := idx[prov]
		if !ok {
			out = append(out, quiniela.Extracto{
				Fecha:     fecha,
				Provincia: prov,
				Loteria:   lot,
				Loterias:  map[quiniela.Sorteo]string{},
				Sorteos:   map[quiniela.Sorteo][]string{},
			})
			i = len(out) - 1
			idx[prov] = i
		}
		// cada sessão tem a própria etiqueta (ex.: PREVIA x NOCTURNA na mesma província)
		out[i].Loterias[quiniela.Sorteo(sorteo)] = lot
		out[i].Sorteos[quiniela.Sorteo(sorteo)] = numeros
	}
	return out, rows.Err()
}

// Totales soma os pagos e pega o maior cobro individual do dia.
// A assimetria (SUM x MAX) é a regra vigente do fechamento.
func (p *Postgres) Totales(ctx context.Context, agentID, fecha string) (pagado, cobrado decimal.Decimal, err error) {
	const q = `
		SELECT
		  COALESCE(SUM(importe) FILTER (WHERE tipo = 'PAGO'), 0),
		  COALESCE(MAX(importe) FILTER (WHERE tipo = 'COBRO'), 0)
		FROM movimientos
		WHERE agent_id = $1 AND fecha = $2`
	err = p.db.QueryRowContext(ctx, q, agentID, fecha).Scan(&pagado, &cobrado)
	return pagado, cobrado, err
}

// SaldoDe retorna o saldo persistido do agente na data; zero se não houver fechamento
func (p *Postgres) SaldoDe(ctx context.Context, agentID, fecha string) (decimal.Decimal, error) {
	var s decimal.Decimal
	err := p.db.QueryRowContext(ctx,
		`SELECT saldo FROM saldos WHERE agent_id = $1 AND fecha = $2`, agentID, fecha).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	return s, err
}

// ComisionPct retorna o percentual de comissão do agente; zero se não cadastrado
func (p *Postgres) ComisionPct(ctx context.Context, agentID string) (decimal.Decimal, error) {
	var pct decimal.Decimal
	err := p.db.QueryRowContext(ctx,
		`SELECT comision_pct FROM agentes WHERE id = $1`, agentID).Scan(&pct)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	return pct, err
}

// Save grava liquidación e saldo na mesma transação (upsert por agente, fecha)
func (p *Postgres) Save(ctx context.Context, agentID, fecha string, liq quiniela.Liquidacion, bal quiniela.Balance) error {
	doc, err := json.Marshal(liq)
	if err != nil {
		return fmt.Errorf("marshal liquidacion: %w", err)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO liquidaciones (agent_id, fecha, aciertos, total, cantidad, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (agent_id, fecha) DO UPDATE SET
		  aciertos   = EXCLUDED.aciertos,
		  total      = EXCLUDED.total,
		  cantidad   = EXCLUDED.cantidad,
		  updated_at = EXCLUDED.updated_at`,
		agentID, fecha, doc, liq.Premios, liq.Count()); err != nil {
		return fmt.Errorf("upsert liquidacion: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO saldos
		  (agent_id, fecha, saldo_anterior, jugado, comision_pct, comision, premios, pagado, cobrado, neto, saldo, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (agent_id, fecha) DO UPDATE SET
		  saldo_anterior = EXCLUDED.saldo_anterior,
		  jugado         = EXCLUDED.jugado,
		  comision_pct   = EXCLUDED.comision_pct,
		  comision       = EXCLUDED.comision,
		  premios        = EXCLUDED.premios,
		  pagado         = EXCLUDED.pagado,
		  cobrado        = EXCLUDED.cobrado,
		  neto           = EXCLUDED.neto,
		  saldo          = EXCLUDED.saldo,
		  updated_at     = EXCLUDED.updated_at`,
		agentID, fecha, bal.SaldoAnterior, bal.Jugado, bal.ComisionPct, bal.Comision,
		bal.Premios, bal.Pagado, bal.Cobrado, bal.Neto, bal.Saldo); err != nil {
		return fmt.Errorf("upsert saldo: %w", err)
	}

	return tx.Commit()
}

// GetLiquidacion lê o documento de acertos persistido
func (p *Postgres) GetLiquidacion(ctx context.Context, agentID, fecha string) (quiniela.Liquidacion, error) {
	var (
		liq quiniela.Liquidacion
		doc []byte
	)
	err := p.db.QueryRowContext(ctx,
		`SELECT aciertos FROM liquidaciones WHERE agent_id = $1 AND fecha = $2`, agentID, fecha).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return liq, ErrNotFound
	}
	if err != nil {
		return liq, err
	}
	if err := json.Unmarshal(doc, &liq); err != nil {
		return liq, fmt.Errorf("decode liquidacion: %w", err)
	}
	return liq, nil
}

// GetSaldo lê o snapshot de saldo persistido
func (p *Postgres) GetSaldo(ctx context.Context, agentID, fecha string) (quiniela.Balance, error) {
	var b quiniela.Balance
	err := p.db.QueryRowContext(ctx, `
		SELECT saldo_anterior, jugado, comision_pct, comision, premios, pagado, cobrado, neto, saldo
		FROM saldos
		WHERE agent_id = $1 AND fecha = $2`, agentID, fecha).
		Scan(&b.SaldoAnterior, &b.Jugado, &b.ComisionPct, &b.Comision, &b.Premios, &b.Pagado, &b.Cobrado, &b.Neto, &b.Saldo)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	return b, err
}
