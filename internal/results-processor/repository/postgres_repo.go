package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/radieske/quiniela-backoffice/internal/quiniela"
	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

// PostgresRepo persiste extratos na tabela extractos, um registro por slot (fecha, provincia, sorteo)
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// Merge grava o extrato sem nunca sobrescrever um slot já completo.
// changed=false quando o slot já estava finalizado; completo informa o estado gravado.
func (r *PostgresRepo) Merge(ctx context.Context, e events.ExtractoPublicado) (completo, changed bool, err error) {
	const q = `
		INSERT INTO extractos
		  (fecha, provincia, sorteo, loteria, numeros, completo, source, updated_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,NOW())
		ON CONFLICT (fecha, provincia, sorteo) DO UPDATE SET
		  loteria    = EXCLUDED.loteria,
		  numeros    = EXCLUDED.numeros,
		  completo   = EXCLUDED.completo,
		  source     = EXCLUDED.source,
		  updated_at = NOW()
		WHERE NOT extractos.completo
		RETURNING completo
	`
	err = r.DB.QueryRowContext(ctx, q,
		e.Fecha, e.Provincia, e.Sorteo, e.Loteria,
		pq.Array(e.Numeros), quiniela.Complete(e.Numeros), e.Source,
	).Scan(&completo)
	if errors.Is(err, sql.ErrNoRows) {
		return true, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return completo, true, nil
}
