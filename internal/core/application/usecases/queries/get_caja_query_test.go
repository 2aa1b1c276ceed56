package queries_test

import (
	"testing"

	"coldchain/internal/core/application/usecases/queries"
	"coldchain/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetCajaQuery_Valid(t *testing.T) {
	cajaID := kernel.NewUUID()

	query, err := queries.NewGetCajaQuery(cajaID)
	require.NoError(t, err)
	require.NoError(t, query.Validate())
	assert.True(t, cajaID.IsEqual(query.CajaID()))
}

func TestNewGetCajaQuery_InvalidID(t *testing.T) {
	_, err := queries.NewGetCajaQuery(kernel.UUID{})
	require.Error(t, err)
}

func TestGetCajaQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetCajaQuery{}
	err := query.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetCajaQueryIsNotConstructed)
}
