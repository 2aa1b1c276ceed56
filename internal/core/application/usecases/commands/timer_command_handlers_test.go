package commands_test

import (
	"errors"
	"testing"
	"time"

	"coldchain/internal/core/application/usecases/commands"
	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/modelo"
	"coldchain/internal/core/domain/model/timer"
	"coldchain/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newTemperingTic returns a TIC mid-atemperamiento with an item-owned running
// cronometer for that phase.
func newTemperingTic(t *testing.T, sedeID *kernel.UUID) (*item.Item, *timer.Timer) {
	t.Helper()

	unit := newUnitAt(t, modelo.KindTIC, "5L", sedeID)
	require.NoError(t, unit.StartCongelamiento("LOTE-CONG-01"))
	require.NoError(t, unit.MarkCongelado())
	require.NoError(t, unit.StartAtemperamiento())

	tr, err := timer.NewTimer(kernel.NewUUID(), timer.OwnerItem, unit.Rfid().String(),
		timer.PhaseAtemperamiento, unit.Lote())
	require.NoError(t, err)
	require.NoError(t, tr.Start(time.Now(), 3600))
	return unit, tr
}

func TestStartTimerCommandHandler_Handle_CreatesMissingTimer(t *testing.T) {
	ctx := t.Context()
	rfid := nextRfid(t)
	cmd, err := commands.NewStartTimerCommand(timer.OwnerItem, rfid.String(),
		timer.PhaseCongelamiento, 1800, strPtr("LOTE-CONG-02"))
	require.NoError(t, err)

	timerRepo := new(MockTimerRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("TimerRepository").Return(timerRepo)
	timerRepo.On("Get", ctx, timer.OwnerItem, rfid.String(), timer.PhaseCongelamiento).
		Return(nil, errs.NewObjectNotFoundError("timer", rfid.String())).
		Once()
	timerRepo.On("Upsert", ctx, mock.AnythingOfType("*timer.Timer")).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPhaseUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewStartTimerCommandHandler(factory)
	require.NoError(t, handler.Handle(ctx, cmd))

	var armed *timer.Timer
	for _, call := range timerRepo.Calls {
		if call.Method == "Upsert" {
			armed = call.Arguments[1].(*timer.Timer)
		}
	}
	require.NotNil(t, armed)
	assert.True(t, armed.Active())
	assert.Equal(t, rfid.String(), armed.OwnerRef())
	assert.Equal(t, int64(1800), *armed.DurationSec())
	require.NotNil(t, armed.Lote())
	assert.Equal(t, "LOTE-CONG-02", *armed.Lote())

	timerRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestStartTimerCommandHandler_Handle_RearmsExistingTimer(t *testing.T) {
	ctx := t.Context()
	sede := kernel.NewUUID()
	_, existing := newTemperingTic(t, &sede)
	firstStart := *existing.StartedAt()

	cmd, err := commands.NewStartTimerCommand(existing.OwnerType(), existing.OwnerRef(),
		existing.Phase(), 7200, nil)
	require.NoError(t, err)

	timerRepo := new(MockTimerRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("TimerRepository").Return(timerRepo)
	timerRepo.On("Get", ctx, existing.OwnerType(), existing.OwnerRef(), existing.Phase()).
		Return(existing, nil).
		Once()
	timerRepo.On("Upsert", ctx, existing).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPhaseUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewStartTimerCommandHandler(factory)
	require.NoError(t, handler.Handle(ctx, cmd))

	assert.True(t, existing.Active())
	assert.Equal(t, int64(7200), *existing.DurationSec())
	assert.False(t, existing.StartedAt().Before(firstStart))
}

func TestStartTimerCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.StartTimerCommand{} // not constructed properly

	factory := new(MockPhaseUoWFactory)
	handler := commands.NewStartTimerCommandHandler(factory)
	err := handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, commands.ErrStartTimerCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func TestClearTimerCommandHandler_Handle_ClearsActiveTimer(t *testing.T) {
	ctx := t.Context()
	sede := kernel.NewUUID()
	_, running := newTemperingTic(t, &sede)

	cmd, err := commands.NewStopTimerCommand(running.OwnerType(), running.OwnerRef(), running.Phase())
	require.NoError(t, err)

	timerRepo := new(MockTimerRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("TimerRepository").Return(timerRepo)
	timerRepo.On("Get", ctx, running.OwnerType(), running.OwnerRef(), running.Phase()).
		Return(running, nil).
		Once()
	timerRepo.On("Update", ctx, running).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPhaseUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewClearTimerCommandHandler(factory)
	require.NoError(t, handler.Handle(ctx, cmd))

	assert.False(t, running.Active())
	assert.Nil(t, running.CompletedAt())
	timerRepo.AssertExpectations(t)
}

func TestClearTimerCommandHandler_Handle_InactiveIsNoop(t *testing.T) {
	ctx := t.Context()
	rfid := nextRfid(t)
	idle, err := timer.NewTimer(kernel.NewUUID(), timer.OwnerItem, rfid.String(),
		timer.PhaseCongelamiento, nil)
	require.NoError(t, err)

	cmd, err := commands.NewStopTimerCommand(timer.OwnerItem, rfid.String(), timer.PhaseCongelamiento)
	require.NoError(t, err)

	timerRepo := new(MockTimerRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("TimerRepository").Return(timerRepo)
	timerRepo.On("Get", ctx, timer.OwnerItem, rfid.String(), timer.PhaseCongelamiento).
		Return(idle, nil).
		Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPhaseUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewClearTimerCommandHandler(factory)
	require.NoError(t, handler.Handle(ctx, cmd))

	timerRepo.AssertNotCalled(t, "Update", ctx, idle)
}

func TestClearTimerCommandHandler_Handle_TimerNotFound(t *testing.T) {
	ctx := t.Context()
	rfid := nextRfid(t)
	cmd, err := commands.NewStopTimerCommand(timer.OwnerItem, rfid.String(), timer.PhaseCongelamiento)
	require.NoError(t, err)

	timerRepo := new(MockTimerRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("TimerRepository").Return(timerRepo)
	timerRepo.On("Get", ctx, timer.OwnerItem, rfid.String(), timer.PhaseCongelamiento).
		Return(nil, errs.NewObjectNotFoundError("timer", rfid.String())).
		Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPhaseUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewClearTimerCommandHandler(factory)
	err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	uow.AssertNotCalled(t, "Commit", ctx)
}

func TestCompleteTimerCommandHandler_Handle_MovesOwnerThroughPhaseDone(t *testing.T) {
	ctx := t.Context()
	sede := kernel.NewUUID()
	unit, running := newTemperingTic(t, &sede)

	cmd, err := commands.NewStopTimerCommand(running.OwnerType(), running.OwnerRef(), running.Phase())
	require.NoError(t, err)

	itemRepo := new(MockItemRepository)
	timerRepo := new(MockTimerRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ItemRepository").Return(itemRepo)
	uow.On("TimerRepository").Return(timerRepo)
	timerRepo.On("Get", ctx, running.OwnerType(), running.OwnerRef(), running.Phase()).
		Return(running, nil).
		Once()
	timerRepo.On("Update", ctx, running).Return(nil).Once()
	itemRepo.On("GetByRfid", ctx, unit.Rfid()).Return(unit, nil).Once()
	itemRepo.On("Update", ctx, unit).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPhaseUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCompleteTimerCommandHandler(factory)
	require.NoError(t, handler.Handle(ctx, cmd))

	assert.False(t, running.Active())
	assert.NotNil(t, running.CompletedAt())
	assert.Equal(t, item.Atemperado, unit.SubEstado())

	itemRepo.AssertExpectations(t)
	timerRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestCompleteTimerCommandHandler_Handle_SkipsOwnerAlreadyMovedOn(t *testing.T) {
	ctx := t.Context()
	sede := kernel.NewUUID()
	unit, running := newTemperingTic(t, &sede)
	require.NoError(t, unit.MarkAtemperado())

	cmd, err := commands.NewStopTimerCommand(running.OwnerType(), running.OwnerRef(), running.Phase())
	require.NoError(t, err)

	itemRepo := new(MockItemRepository)
	timerRepo := new(MockTimerRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ItemRepository").Return(itemRepo)
	uow.On("TimerRepository").Return(timerRepo)
	timerRepo.On("Get", ctx, running.OwnerType(), running.OwnerRef(), running.Phase()).
		Return(running, nil).
		Once()
	timerRepo.On("Update", ctx, running).Return(nil).Once()
	itemRepo.On("GetByRfid", ctx, unit.Rfid()).Return(unit, nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPhaseUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCompleteTimerCommandHandler(factory)
	require.NoError(t, handler.Handle(ctx, cmd))

	itemRepo.AssertNotCalled(t, "Update", ctx, unit)
	assert.Equal(t, item.Atemperado, unit.SubEstado())
}

func TestCompleteTimerCommandHandler_Handle_TransitExpiryMovesNoUnits(t *testing.T) {
	ctx := t.Context()
	cajaID := kernel.NewUUID()
	lote := "CAJA-5L-CCCC3333"
	transito, err := timer.NewTimer(kernel.NewUUID(), timer.OwnerCaja, cajaID.String(),
		timer.PhaseTransito, &lote)
	require.NoError(t, err)
	require.NoError(t, transito.Start(time.Now(), 86400))

	cmd, err := commands.NewStopTimerCommand(timer.OwnerCaja, cajaID.String(), timer.PhaseTransito)
	require.NoError(t, err)

	itemRepo := new(MockItemRepository)
	timerRepo := new(MockTimerRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ItemRepository").Return(itemRepo)
	uow.On("TimerRepository").Return(timerRepo)
	timerRepo.On("Get", ctx, timer.OwnerCaja, cajaID.String(), timer.PhaseTransito).
		Return(transito, nil).
		Once()
	timerRepo.On("Update", ctx, transito).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPhaseUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCompleteTimerCommandHandler(factory)
	require.NoError(t, handler.Handle(ctx, cmd))

	assert.False(t, transito.Active())
	itemRepo.AssertNotCalled(t, "GetByCaja", ctx, cajaID)
}

func TestCompleteTimerCommandHandler_Handle_InactiveTimerConflict(t *testing.T) {
	ctx := t.Context()
	rfid := nextRfid(t)
	idle, err := timer.NewTimer(kernel.NewUUID(), timer.OwnerItem, rfid.String(),
		timer.PhaseCongelamiento, nil)
	require.NoError(t, err)

	cmd, err := commands.NewStopTimerCommand(timer.OwnerItem, rfid.String(), timer.PhaseCongelamiento)
	require.NoError(t, err)

	timerRepo := new(MockTimerRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("TimerRepository").Return(timerRepo)
	timerRepo.On("Get", ctx, timer.OwnerItem, rfid.String(), timer.PhaseCongelamiento).
		Return(idle, nil).
		Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPhaseUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCompleteTimerCommandHandler(factory)
	err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrStateConflict)
	timerRepo.AssertNotCalled(t, "Update", ctx, idle)
	uow.AssertNotCalled(t, "Commit", ctx)
}

func TestCompleteTimerCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewStopTimerCommand(timer.OwnerItem, nextRfid(t).String(), timer.PhaseCongelamiento)
	require.NoError(t, err)

	uow := new(MockUoW)
	factory := new(MockPhaseUoWFactory)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(errors.New("begin error")).Once(),
	)

	handler := commands.NewCompleteTimerCommandHandler(factory)
	err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.EqualError(t, err, "begin error")
}
