package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/radieske/quiniela-backoffice/internal/quiniela"
)

var ErrNotFound = errors.New("not found")

// Postgres implementa operações de persistência de apostas em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Create grava a aposta com o documento JSON (tipo explícito) e devolve seq e created_at
func (p *Postgres) Create(ctx context.Context, b *quiniela.Bet) error {
	doc, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal apuesta: %w", err)
	}
	return p.db.QueryRowContext(ctx, `
		INSERT INTO apuestas (agent_id, fecha, sorteo, tipo, importe, doc)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING seq, created_at`,
		b.AgentID, b.Fecha, string(b.Sorteo), string(b.Tipo()), b.Importe(), doc,
	).Scan(&b.Seq, &b.CreatedAt)
}

// Get retorna o cabeçalho da aposta pelo seq
func (p *Postgres) Get(ctx context.Context, seq int64) (Cabecera, error) {
	c := Cabecera{Seq: seq}
	err := p.db.QueryRowContext(ctx, `
		SELECT agent_id, to_char(fecha, 'YYYY-MM-DD'), sorteo, tipo, anulada, created_at
		FROM apuestas WHERE seq = $1`, seq).
		Scan(&c.AgentID, &c.Fecha, &c.Sorteo, &c.Tipo, &c.Anulada, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	return c, err
}

// Anular marca a aposta como anulada. Idempotente: já anulada devolve false.
func (p *Postgres) Anular(ctx context.Context, seq int64) (bool, error) {
	res, err := p.db.ExecContext(ctx,
		`UPDATE apuestas SET anulada = TRUE, updated_at = NOW() WHERE seq = $1 AND NOT anulada`, seq)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// List retorna as apostas do agente na data
func (p *Postgres) List(ctx context.Context, agentID, fecha string) ([]quiniela.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT seq, anulada, doc, created_at
		FROM apuestas
		WHERE agent_id = $1 AND fecha = $2
		ORDER BY seq`, agentID, fecha)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []quiniela.Bet{}
	for rows.Next() {
		var (
			seq       int64
			anulada   bool
			doc       []byte
			createdAt time.Time
		)
		if err := rows.Scan(&seq, &anulada, &doc, &createdAt); err != nil {
			return nil, err
		}
		var b quiniela.Bet
		if err := json.Unmarshal(doc, &b); err != nil {
			return nil, fmt.Errorf("apuesta %d: %w", seq, err)
		}
		b.Seq, b.Anulada, b.CreatedAt = seq, anulada, createdAt
		out = append(out, b)
	}
	return out, rows.Err()
}
