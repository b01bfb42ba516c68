package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

func completo() []string {
	nums := make([]string, 20)
	for i := range nums {
		nums[i] = "1234"
	}
	return nums
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name        string
		numeros     []string
		rows        *sqlmock.Rows
		err         error
		wantDone    bool
		wantChanged bool
		wantErr     bool
	}{
		{"novo completo", completo(), sqlmock.NewRows([]string{"completo"}).AddRow(true), nil, true, true, false},
		{"placeholder", []string{"0000"}, sqlmock.NewRows([]string{"completo"}).AddRow(false), nil, false, true, false},
		{"slot finalizado", completo(), sqlmock.NewRows([]string{"completo"}), nil, true, false, false},
		{"erro", completo(), nil, errors.New("boom"), false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			exp := mock.ExpectQuery(`INSERT INTO extractos`).
				WithArgs("2024-05-10", "NACIONAL", "NOCTURNA", "NACIONAL", sqlmock.AnyArg(), len(tt.numeros) == 20, "feed")
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnRows(tt.rows)
			}

			r := NewPostgresRepo(db)
			done, changed, err := r.Merge(context.Background(), events.ExtractoPublicado{
				Fecha: "2024-05-10", Provincia: "NACIONAL", Loteria: "NACIONAL", Sorteo: "NOCTURNA",
				Numeros: tt.numeros, Source: "feed",
			})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantDone, done)
				assert.Equal(t, tt.wantChanged, changed)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
