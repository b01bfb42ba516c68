package repo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/quiniela-backoffice/internal/quiniela"
)

func newMock(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db), mock
}

func TestListApuestas(t *testing.T) {
	p, mock := newMock(t)
	now := time.Date(2024, 5, 10, 11, 0, 0, 0, time.UTC)

	doc := `{"tipo":"quiniela","sorteo":"NOCTURNA","provincias":["NACION"],` +
		`"jugada":{"lineas":[{"numero":"34","posicion":1,"importe":"10"}]}}`
	rows := sqlmock.NewRows([]string{"seq", "sorteo", "anulada", "doc", "created_at"}).
		AddRow(int64(7), "NOCTURNA", false, []byte(doc), now).
		AddRow(int64(8), "NOCTURNA", true, []byte(`{"tipo":"loteca","jugada":{}}`), now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM apuestas")).
		WithArgs("ag1", "2024-05-10").
		WillReturnRows(rows)

	bets, err := p.ListApuestas(context.Background(), "ag1", "2024-05-10")
	require.NoError(t, err)
	require.Len(t, bets, 2)

	assert.Equal(t, int64(7), bets[0].Seq)
	assert.Equal(t, "ag1", bets[0].AgentID)
	assert.Equal(t, quiniela.TipoQuiniela, bets[0].Tipo())
	assert.Equal(t, "10", bets[0].Importe().String())
	assert.NoError(t, bets[0].Validate())

	assert.Nil(t, bets[1].Jugada, "tipo desconhecido vira aposta sem jogada")
	assert.True(t, bets[1].Anulada)
	assert.Equal(t, quiniela.SorteoNocturna, bets[1].Sorteo)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAgentesConActividad(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("UNION")).
		WithArgs("2024-05-10").
		WillReturnRows(sqlmock.NewRows([]string{"agent_id"}).AddRow("ag1").AddRow("ag2"))

	got, err := p.AgentesConActividad(context.Background(), "2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"ag1", "ag2"}, got)
}

func TestListExtractos_AgrupaPorProvincia(t *testing.T) {
	p, mock := newMock(t)
	rows := sqlmock.NewRows([]string{"provincia", "loteria", "sorteo", "numeros"}).
		AddRow("NACION", "MATUTINA", "MATUTINA", "{1234,5678}").
		AddRow("NACION", "NOCTURNA", "NOCTURNA", "{0001,0002}").
		AddRow("PROVIN", "PROVINCIA", "NOCTURNA", "{9999}")
	mock.ExpectQuery(regexp.QuoteMeta("FROM extractos")).
		WithArgs("2024-05-10").
		WillReturnRows(rows)

	exts, err := p.ListExtractos(context.Background(), "2024-05-10")
	require.NoError(t, err)
	require.Len(t, exts, 2)

	assert.Equal(t, "NACION", exts[0].Provincia)
	assert.Equal(t, []string{"1234", "5678"}, exts[0].Sorteos[quiniela.SorteoMatutina])
	assert.Equal(t, []string{"0001", "0002"}, exts[0].Sorteos[quiniela.SorteoNocturna])
	assert.Equal(t, "MATUTINA", exts[0].LoteriaDe(quiniela.SorteoMatutina))
	assert.Equal(t, "NOCTURNA", exts[0].LoteriaDe(quiniela.SorteoNocturna))
	assert.Equal(t, "PROVINCIA", exts[1].Loteria)
	assert.Len(t, exts[1].Sorteos, 1)
}

func TestTotales(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM movimientos")).
		WithArgs("ag1", "2024-05-10").
		WillReturnRows(sqlmock.NewRows([]string{"pagado", "cobrado"}).AddRow("150.50", "80.00"))

	pagado, cobrado, err := p.Totales(context.Background(), "ag1", "2024-05-10")
	require.NoError(t, err)
	assert.True(t, pagado.Equal(decimal.RequireFromString("150.5")))
	assert.True(t, cobrado.Equal(decimal.NewFromInt(80)))
}

func TestSaldoDe_SemFechamento(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT saldo FROM saldos")).
		WithArgs("ag1", "2024-05-09").
		WillReturnRows(sqlmock.NewRows([]string{"saldo"}))

	s, err := p.SaldoDe(context.Background(), "ag1", "2024-05-09")
	require.NoError(t, err)
	assert.True(t, s.IsZero())
}

func TestComisionPct(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM agentes")).
		WithArgs("ag1").
		WillReturnRows(sqlmock.NewRows([]string{"comision_pct"}).AddRow("12.50"))

	pct, err := p.ComisionPct(context.Background(), "ag1")
	require.NoError(t, err)
	assert.Equal(t, "12.5", pct.String())
}

func sampleBalance() quiniela.Balance {
	return quiniela.ComputeBalance(quiniela.BalanceInput{
		SaldoAnterior: decimal.NewFromInt(100),
		Jugado:        decimal.NewFromInt(10),
		ComisionPct:   decimal.NewFromInt(10),
		Premios:       decimal.NewFromInt(700),
		Pagado:        decimal.NewFromInt(50),
		Cobrado:       decimal.NewFromInt(20),
	})
}

func TestSave(t *testing.T) {
	p, mock := newMock(t)
	liq := quiniela.Liquidacion{
		Aciertos: map[string]map[quiniela.Sorteo][]quiniela.Acierto{},
		Premios:  decimal.NewFromInt(700),
		Jugado:   decimal.NewFromInt(10),
	}
	bal := sampleBalance()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO liquidaciones")).
		WithArgs("ag1", "2024-05-10", sqlmock.AnyArg(), liq.Premios, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO saldos")).
		WithArgs("ag1", "2024-05-10", bal.SaldoAnterior, bal.Jugado, bal.ComisionPct, bal.Comision,
			bal.Premios, bal.Pagado, bal.Cobrado, bal.Neto, bal.Saldo).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, p.Save(context.Background(), "ag1", "2024-05-10", liq, bal))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_RollbackOnError(t *testing.T) {
	p, mock := newMock(t)
	boom := errors.New("deadlock")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO liquidaciones")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO saldos")).
		WillReturnError(boom)
	mock.ExpectRollback()

	err := p.Save(context.Background(), "ag1", "2024-05-10", quiniela.Liquidacion{}, sampleBalance())
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLiquidacion(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM liquidaciones")).
		WithArgs("ag1", "2024-05-10").
		WillReturnRows(sqlmock.NewRows([]string{"aciertos"}).
			AddRow([]byte(`{"aciertos":{},"premios":"700","jugado":"10","apuestas":1,"omitidas":0}`)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM liquidaciones")).
		WithArgs("ag2", "2024-05-10").
		WillReturnRows(sqlmock.NewRows([]string{"aciertos"}))

	liq, err := p.GetLiquidacion(context.Background(), "ag1", "2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, "700", liq.Premios.String())
	assert.Equal(t, 1, liq.Apuestas)

	_, err = p.GetLiquidacion(context.Background(), "ag2", "2024-05-10")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetSaldo_NotFound(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM saldos")).
		WithArgs("ag1", "2024-05-10").
		WillReturnRows(sqlmock.NewRows([]string{"saldo_anterior"}))

	_, err := p.GetSaldo(context.Background(), "ag1", "2024-05-10")
	assert.ErrorIs(t, err, ErrNotFound)
}
