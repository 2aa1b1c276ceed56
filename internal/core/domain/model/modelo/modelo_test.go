package modelo_test

import (
	"fmt"
	"testing"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/modelo"
	"coldchain/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_Constants(t *testing.T) {
	t.Run("should have correct enum values", func(t *testing.T) {
		assert.Equal(t, 0, int(modelo.KindUnknown))
		assert.Equal(t, 1, int(modelo.KindTIC))
		assert.Equal(t, 2, int(modelo.KindVIP))
		assert.Equal(t, 3, int(modelo.KindCUBE))
	})
}

func TestKind_Validate(t *testing.T) {
	t.Run("should validate valid kinds", func(t *testing.T) {
		validKinds := []modelo.Kind{
			modelo.KindTIC,
			modelo.KindVIP,
			modelo.KindCUBE,
		}

		for _, kind := range validKinds {
			t.Run(fmt.Sprintf("should validate %s kind", kind.String()), func(t *testing.T) {
				err := kind.Validate()
				require.NoError(t, err)
			})
		}
	})

	t.Run("should reject Unknown kind", func(t *testing.T) {
		err := modelo.KindUnknown.Validate()

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "0 is not a valid unit kind")
	})

	t.Run("should reject out of range kind values", func(t *testing.T) {
		for _, kind := range []modelo.Kind{modelo.Kind(-1), modelo.Kind(4), modelo.Kind(100)} {
			t.Run(fmt.Sprintf("should reject kind value %d", int(kind)), func(t *testing.T) {
				err := kind.Validate()
				require.Error(t, err)
				assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
			})
		}
	})
}

func TestKind_String(t *testing.T) {
	t.Run("should return catalog labels", func(t *testing.T) {
		assert.Equal(t, "TIC", modelo.KindTIC.String())
		assert.Equal(t, "VIP", modelo.KindVIP.String())
		assert.Equal(t, "CUBE", modelo.KindCUBE.String())
	})

	t.Run("should return Unknown for undefined values", func(t *testing.T) {
		assert.Equal(t, "Unknown", modelo.KindUnknown.String())
		assert.Equal(t, "Unknown", modelo.Kind(42).String())
	})
}

func TestNewLitraje(t *testing.T) {
	t.Run("should create valid capacity class", func(t *testing.T) {
		litraje, err := modelo.NewLitraje("5L")

		require.NoError(t, err)
		assert.Equal(t, "5L", litraje.String())
		require.NoError(t, litraje.Validate())
	})

	t.Run("should reject empty value", func(t *testing.T) {
		_, err := modelo.NewLitraje("")

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestLitraje_IsEqual(t *testing.T) {
	l5a, _ := modelo.NewLitraje("5L")
	l5b, _ := modelo.NewLitraje("5L")
	l10, _ := modelo.NewLitraje("10L")

	assert.True(t, l5a.IsEqual(l5b))
	assert.False(t, l5a.IsEqual(l10))
}

func TestLitraje_Validate(t *testing.T) {
	t.Run("should reject zero value", func(t *testing.T) {
		var litraje modelo.Litraje
		err := litraje.Validate()

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestNewModelo(t *testing.T) {
	litraje, _ := modelo.NewLitraje("5L")

	t.Run("should create valid catalog entry", func(t *testing.T) {
		id := kernel.NewUUID()

		m, err := modelo.NewModelo(id, "TIC 5L estándar", modelo.KindTIC, litraje)

		require.NoError(t, err)
		require.NoError(t, m.Validate())
		assert.True(t, id.IsEqual(m.ID()))
		assert.Equal(t, "TIC 5L estándar", m.Nombre())
		assert.Equal(t, modelo.KindTIC, m.Kind())
		assert.True(t, litraje.IsEqual(m.Litraje()))
	})

	t.Run("should reject invalid id", func(t *testing.T) {
		_, err := modelo.NewModelo(kernel.UUID{}, "TIC 5L estándar", modelo.KindTIC, litraje)
		require.Error(t, err)
	})

	t.Run("should reject unknown kind", func(t *testing.T) {
		_, err := modelo.NewModelo(kernel.NewUUID(), "TIC 5L estándar", modelo.KindUnknown, litraje)
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject empty nombre", func(t *testing.T) {
		_, err := modelo.NewModelo(kernel.NewUUID(), "", modelo.KindTIC, litraje)
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject zero value litraje", func(t *testing.T) {
		_, err := modelo.NewModelo(kernel.NewUUID(), "TIC 5L estándar", modelo.KindTIC, modelo.Litraje{})
		require.Error(t, err)
	})
}

func TestRestoreModelo(t *testing.T) {
	litraje, _ := modelo.NewLitraje("10L")

	m, err := modelo.RestoreModelo(kernel.NewUUID(), "CUBE 10L", modelo.KindCUBE, litraje)

	require.NoError(t, err)
	require.NoError(t, m.Validate())
	assert.Equal(t, modelo.KindCUBE, m.Kind())
}

func TestModelo_Validate(t *testing.T) {
	t.Run("should reject nil modelo", func(t *testing.T) {
		var m *modelo.Modelo
		err := m.Validate()

		require.Error(t, err)
		assert.ErrorIs(t, err, modelo.ErrModeloIsNotConstructed)
	})

	t.Run("should reject modelo not created via constructor", func(t *testing.T) {
		m := &modelo.Modelo{}
		err := m.Validate()

		require.Error(t, err)
		assert.ErrorIs(t, err, modelo.ErrModeloIsNotConstructed)
	})
}
