package commands_test

import (
	"context"
	"fmt"
	"testing"

	"coldchain/internal/core/application/usecases/commands"
	"coldchain/internal/core/domain/model/caja"
	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/modelo"
	"coldchain/internal/core/domain/model/novedad"
	"coldchain/internal/core/domain/model/orden"
	"coldchain/internal/core/domain/model/timer"
	"coldchain/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Shared mocks for the command handler tests. One MockUoW implements every
// unit-of-work interface; handlers only see the slice they depend on.

type MockItemRepository struct{ mock.Mock }

func (m *MockItemRepository) Add(ctx context.Context, aggregate *item.Item) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockItemRepository) Update(ctx context.Context, aggregate *item.Item) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockItemRepository) GetByRfid(ctx context.Context, rfid kernel.Rfid) (*item.Item, error) {
	args := m.Called(ctx, rfid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemRepository) FindByRfids(ctx context.Context, rfids []kernel.Rfid) ([]*item.Item, error) {
	args := m.Called(ctx, rfids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*item.Item), args.Error(1)
}

func (m *MockItemRepository) GetByLote(ctx context.Context, lote string) ([]*item.Item, error) {
	args := m.Called(ctx, lote)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*item.Item), args.Error(1)
}

func (m *MockItemRepository) GetByCaja(ctx context.Context, cajaID kernel.UUID) ([]*item.Item, error) {
	args := m.Called(ctx, cajaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*item.Item), args.Error(1)
}

type MockCajaRepository struct{ mock.Mock }

func (m *MockCajaRepository) Add(ctx context.Context, aggregate *caja.Caja) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockCajaRepository) Update(ctx context.Context, aggregate *caja.Caja) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockCajaRepository) Get(ctx context.Context, id kernel.UUID) (*caja.Caja, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*caja.Caja), args.Error(1)
}

func (m *MockCajaRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*caja.Caja, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*caja.Caja), args.Error(1)
}

func (m *MockCajaRepository) GetByLote(ctx context.Context, lote string) (*caja.Caja, error) {
	args := m.Called(ctx, lote)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*caja.Caja), args.Error(1)
}

func (m *MockCajaRepository) GetByMember(ctx context.Context, itemID kernel.UUID) (*caja.Caja, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*caja.Caja), args.Error(1)
}

func (m *MockCajaRepository) Delete(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTimerRepository struct{ mock.Mock }

func (m *MockTimerRepository) Upsert(ctx context.Context, aggregate *timer.Timer) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockTimerRepository) Update(ctx context.Context, aggregate *timer.Timer) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockTimerRepository) Get(
	ctx context.Context,
	ownerType timer.OwnerType,
	ownerRef string,
	phase timer.Phase,
) (*timer.Timer, error) {
	args := m.Called(ctx, ownerType, ownerRef, phase)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*timer.Timer), args.Error(1)
}

func (m *MockTimerRepository) GetActiveByPhase(ctx context.Context, phase timer.Phase) ([]*timer.Timer, error) {
	args := m.Called(ctx, phase)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*timer.Timer), args.Error(1)
}

func (m *MockTimerRepository) DeleteByOwner(ctx context.Context, ownerType timer.OwnerType, ownerRef string) error {
	args := m.Called(ctx, ownerType, ownerRef)
	return args.Error(0)
}

type MockTimerConfigRepository struct{ mock.Mock }

func (m *MockTimerConfigRepository) Add(ctx context.Context, aggregate *timer.Config) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockTimerConfigRepository) FindCandidates(
	ctx context.Context,
	modeloIDs []kernel.UUID,
	litrajes []string,
) ([]*timer.Config, error) {
	args := m.Called(ctx, modeloIDs, litrajes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*timer.Config), args.Error(1)
}

type MockModeloRepository struct{ mock.Mock }

func (m *MockModeloRepository) Get(ctx context.Context, id kernel.UUID) (*modelo.Modelo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*modelo.Modelo), args.Error(1)
}

type MockOrdenRepository struct{ mock.Mock }

func (m *MockOrdenRepository) Get(ctx context.Context, id kernel.UUID) (*orden.Orden, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orden.Orden), args.Error(1)
}

func (m *MockOrdenRepository) Update(ctx context.Context, aggregate *orden.Orden) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

type MockNovedadRepository struct{ mock.Mock }

func (m *MockNovedadRepository) Add(ctx context.Context, aggregate *novedad.Novedad) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) ItemRepository() ports.ItemRepository {
	args := m.Called()
	return args.Get(0).(ports.ItemRepository)
}

func (m *MockUoW) CajaRepository() ports.CajaRepository {
	args := m.Called()
	return args.Get(0).(ports.CajaRepository)
}

func (m *MockUoW) TimerRepository() ports.TimerRepository {
	args := m.Called()
	return args.Get(0).(ports.TimerRepository)
}

func (m *MockUoW) TimerConfigRepository() ports.TimerConfigRepository {
	args := m.Called()
	return args.Get(0).(ports.TimerConfigRepository)
}

func (m *MockUoW) ModeloRepository() ports.ModeloRepository {
	args := m.Called()
	return args.Get(0).(ports.ModeloRepository)
}

func (m *MockUoW) OrdenRepository() ports.OrdenRepository {
	args := m.Called()
	return args.Get(0).(ports.OrdenRepository)
}

func (m *MockUoW) NovedadRepository() ports.NovedadRepository {
	args := m.Called()
	return args.Get(0).(ports.NovedadRepository)
}

type MockItemUoWFactory struct{ mock.Mock }

func (m *MockItemUoWFactory) Create() commands.ItemUoW {
	args := m.Called()
	return args.Get(0).(commands.ItemUoW)
}

type MockPhaseUoWFactory struct{ mock.Mock }

func (m *MockPhaseUoWFactory) Create() commands.PhaseUoW {
	args := m.Called()
	return args.Get(0).(commands.PhaseUoW)
}

type MockCajaUoWFactory struct{ mock.Mock }

func (m *MockCajaUoWFactory) Create() commands.CajaUoW {
	args := m.Called()
	return args.Get(0).(commands.CajaUoW)
}

type MockNovedadUoWFactory struct{ mock.Mock }

func (m *MockNovedadUoWFactory) Create() commands.NovedadUoW {
	args := m.Called()
	return args.Get(0).(commands.NovedadUoW)
}

// Shared fixtures.

var rfidSeq int

func nextRfid(t *testing.T) kernel.Rfid {
	t.Helper()
	rfidSeq++
	rfid, err := kernel.NewRfid(fmt.Sprintf("UNIT%020d", rfidSeq))
	require.NoError(t, err)
	return rfid
}

// scopedContext builds the request context the identity middleware would
// produce: tenant schema plus optional sede pin.
func scopedContext(t *testing.T, sedeID *kernel.UUID, allowTransfer bool) context.Context {
	t.Helper()
	scope, err := kernel.NewScope("tenant_test", sedeID, allowTransfer)
	require.NoError(t, err)
	return kernel.WithScope(t.Context(), scope)
}

func newModelo(t *testing.T, kind modelo.Kind, litraje string) *modelo.Modelo {
	t.Helper()
	l, err := modelo.NewLitraje(litraje)
	require.NoError(t, err)
	m, err := modelo.NewModelo(kernel.NewUUID(), fmt.Sprintf("Modelo %s %s", kind, litraje), kind, l)
	require.NoError(t, err)
	return m
}

func newUnitAt(t *testing.T, kind modelo.Kind, litraje string, sedeID *kernel.UUID) *item.Item {
	t.Helper()
	unit, err := item.NewItem(kernel.NewUUID(), nextRfid(t), newModelo(t, kind, litraje), sedeID, nil, nil)
	require.NoError(t, err)
	return unit
}

func newTemperedTic(t *testing.T, litraje string, sedeID *kernel.UUID) *item.Item {
	t.Helper()
	unit := newUnitAt(t, modelo.KindTIC, litraje, sedeID)
	require.NoError(t, unit.StartCongelamiento("LOTE-01"))
	require.NoError(t, unit.MarkCongelado())
	require.NoError(t, unit.StartAtemperamiento())
	require.NoError(t, unit.MarkAtemperado())
	return unit
}

func codesOf(units []*item.Item) []string {
	codes := make([]string, 0, len(units))
	for _, unit := range units {
		codes = append(codes, unit.Rfid().String())
	}
	return codes
}
