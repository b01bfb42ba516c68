package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/quiniela-backoffice/internal/bet-service/dto"
	"github.com/radieske/quiniela-backoffice/internal/bet-service/repo"
	"github.com/radieske/quiniela-backoffice/internal/quiniela"
	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

type fakeRepo struct {
	bets map[int64]quiniela.Bet
	next int64
}

func newFakeRepo() *fakeRepo { return &fakeRepo{bets: map[int64]quiniela.Bet{}} }

func (f *fakeRepo) Create(_ context.Context, b *quiniela.Bet) error {
	f.next++
	b.Seq = f.next
	f.bets[b.Seq] = *b
	return nil
}

func (f *fakeRepo) Get(_ context.Context, seq int64) (repo.Cabecera, error) {
	b, ok := f.bets[seq]
	if !ok {
		return repo.Cabecera{}, repo.ErrNotFound
	}
	return repo.Cabecera{Seq: seq, AgentID: b.AgentID, Fecha: b.Fecha, Sorteo: string(b.Sorteo), Tipo: string(b.Tipo()), Anulada: b.Anulada}, nil
}

func (f *fakeRepo) Anular(_ context.Context, seq int64) (bool, error) {
	b := f.bets[seq]
	if b.Anulada {
		return false, nil
	}
	b.Anulada = true
	f.bets[seq] = b
	return true, nil
}

func (f *fakeRepo) List(context.Context, string, string) ([]quiniela.Bet, error) {
	return nil, errors.New("not used")
}

type fakePub struct{ evs []events.ApuestaRegistrada }

func (f *fakePub) PublishApuesta(_ context.Context, e events.ApuestaRegistrada) error {
	f.evs = append(f.evs, e)
	return nil
}

type fakeDraws struct{ sorteados []string }

func (f fakeDraws) Sorteados(context.Context, quiniela.Bet) ([]string, error) {
	return f.sorteados, nil
}

// 2024-05-10 09:00 em Buenos Aires: todas as sessões abertas
var manana = time.Date(2024, 5, 10, 9, 0, 0, 0, quiniela.Location())

const quinielaBody = `{"agente":"ag1","fecha":"2024-05-10","sorteo":"nocturna","provincias":["NACION","PROVIN"],
	"tipo":"quiniela","jugada":{"lineas":[{"numero":"34","posicion":1,"importe":"10,50"},{"numero":"1234","posicion":5,"importe":"5"}]}}`

func newTestServer(r *fakeRepo, p *fakePub, d DrawChecker, now time.Time) http.Handler {
	s := NewServer(zap.NewNop(), r, d, p)
	s.now = func() time.Time { return now }
	return s.Router()
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rec
}

func TestPlaceBet(t *testing.T) {
	r, p := newFakeRepo(), &fakePub{}
	h := newTestServer(r, p, fakeDraws{}, manana)

	rec := post(h, "/apuestas", quinielaBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp dto.PlaceBetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Seq)
	assert.Equal(t, "quiniela", resp.Tipo)
	assert.Equal(t, "15.5", resp.Importe.String())

	require.Len(t, p.evs, 1)
	assert.Equal(t, events.AccionAlta, p.evs[0].Accion)
	assert.Equal(t, quiniela.SorteoNocturna, r.bets[1].Sorteo)
}

func TestPlaceBet_Rechazos(t *testing.T) {
	noche := time.Date(2024, 5, 10, 21, 30, 0, 0, quiniela.Location())

	tests := []struct {
		name  string
		body  string
		now   time.Time
		draws DrawChecker
		code  int
	}{
		{"sorteo cerrado", quinielaBody, noche, fakeDraws{}, http.StatusConflict},
		{"extracto publicado", quinielaBody, manana, fakeDraws{sorteados: []string{"NACIONAL"}}, http.StatusConflict},
		{"tipo desconhecido", `{"agente":"ag1","fecha":"2024-05-10","sorteo":"nocturna","provincias":["NACION"],"tipo":"loteca","jugada":{}}`, manana, nil, http.StatusBadRequest},
		{"fecha", `{"agente":"ag1","fecha":"hoy","sorteo":"nocturna","provincias":["NACION"],"tipo":"quiniela","jugada":{}}`, manana, nil, http.StatusBadRequest},
		{"quintina curta", `{"agente":"ag1","fecha":"2024-05-10","sorteo":"previa","provincias":["NACION"],"tipo":"quintina","jugada":{"numeros":["01","02"],"importe":"10"}}`, manana, nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, p := newFakeRepo(), &fakePub{}
			rec := post(newTestServer(r, p, tt.draws, tt.now), "/apuestas", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Empty(t, r.bets)
			assert.Empty(t, p.evs)
		})
	}
}

func TestAnular(t *testing.T) {
	r, p := newFakeRepo(), &fakePub{}
	h := newTestServer(r, p, nil, manana)
	require.Equal(t, http.StatusCreated, post(h, "/apuestas", quinielaBody).Code)

	assert.Equal(t, http.StatusOK, post(h, "/apuestas/1/anular", "").Code)
	assert.True(t, r.bets[1].Anulada)
	assert.Equal(t, http.StatusOK, post(h, "/apuestas/1/anular", "").Code, "repetir é inofensivo")

	require.Len(t, p.evs, 2, "só a primeira anulação gera evento")
	assert.Equal(t, events.AccionAnulacion, p.evs[1].Accion)

	assert.Equal(t, http.StatusNotFound, post(h, "/apuestas/99/anular", "").Code)
	assert.Equal(t, http.StatusNotFound, post(h, "/apuestas/abc/anular", "").Code)
}

func TestAnular_DepoisDoFechamento(t *testing.T) {
	r, p := newFakeRepo(), &fakePub{}
	require.Equal(t, http.StatusCreated, post(newTestServer(r, p, nil, manana), "/apuestas", quinielaBody).Code)

	noche := time.Date(2024, 5, 10, 23, 0, 0, 0, quiniela.Location())
	rec := post(newTestServer(r, p, nil, noche), "/apuestas/1/anular", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, r.bets[1].Anulada)
}
