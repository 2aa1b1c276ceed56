package commands_test

import (
	"errors"
	"testing"

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

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }

func newScanCommand(t *testing.T, target commands.ScanTarget, codes []string, opts ...func(*scanOpts)) commands.ScanToPhaseCommand {
	t.Helper()
	o := scanOpts{}
	for _, opt := range opts {
		opt(&o)
	}
	cmd, err := commands.NewScanToPhaseCommand(target, codes, o.lote, o.durationSec, o.tempSalidaC, o.tempLlegadaC, o.sensorID)
	require.NoError(t, err)
	return cmd
}

type scanOpts struct {
	lote         *string
	durationSec  *int64
	tempSalidaC  *string
	tempLlegadaC *string
	sensorID     *string
}

func withLote(lote string) func(*scanOpts)  { return func(o *scanOpts) { o.lote = &lote } }
func withDuration(d int64) func(*scanOpts)  { return func(o *scanOpts) { o.durationSec = &d } }
func withSalida(temp string) func(*scanOpts) {
	return func(o *scanOpts) { o.tempSalidaC = &temp }
}
func withLlegada(temp string) func(*scanOpts) {
	return func(o *scanOpts) { o.tempLlegadaC = &temp }
}

func TestScanToPhaseCommandHandler_Handle_Congelamiento(t *testing.T) {
	sede := kernel.NewUUID()
	ctx := scopedContext(t, &sede, false)

	units := []*item.Item{
		newUnitAt(t, modelo.KindTIC, "5L", &sede),
		newUnitAt(t, modelo.KindTIC, "5L", &sede),
	}
	cmd := newScanCommand(t, commands.TargetCongelamiento, codesOf(units),
		withLote("LOTE-CONG-07"), withDuration(3600))

	itemRepo := new(MockItemRepository)
	timerRepo := new(MockTimerRepository)
	configRepo := new(MockTimerConfigRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ItemRepository").Return(itemRepo)
	uow.On("TimerRepository").Return(timerRepo)
	uow.On("TimerConfigRepository").Return(configRepo)
	itemRepo.On("FindByRfids", ctx, mock.Anything).Return(units, nil).Once()
	itemRepo.On("Update", ctx, mock.AnythingOfType("*item.Item")).Return(nil).Times(2)
	configRepo.On("FindCandidates", ctx, mock.Anything, mock.Anything).Return([]*timer.Config{}, nil).Once()
	timerRepo.On("Upsert", ctx, mock.AnythingOfType("*timer.Timer")).Return(nil).Times(2)
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPhaseUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewScanToPhaseCommandHandler(factory)
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, codesOf(units), result.Accepted)
	assert.Empty(t, result.Rejected)

	for _, unit := range units {
		assert.Equal(t, item.PreAcondicionamiento, unit.Estado())
		assert.Equal(t, item.Congelamiento, unit.SubEstado())
		require.NotNil(t, unit.Lote())
		assert.Equal(t, "LOTE-CONG-07", *unit.Lote())
	}

	for _, call := range timerRepo.Calls {
		armed := call.Arguments[1].(*timer.Timer)
		assert.Equal(t, timer.OwnerItem, armed.OwnerType())
		assert.Equal(t, timer.PhaseCongelamiento, armed.Phase())
		assert.True(t, armed.Active())
		assert.Equal(t, int64(3600), *armed.DurationSec())
	}

	itemRepo.AssertExpectations(t)
	timerRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestScanToPhaseCommandHandler_Handle_RejectsConflictsPerCode(t *testing.T) {
	sede := kernel.NewUUID()
	ctx := scopedContext(t, &sede, false)

	tic := newUnitAt(t, modelo.KindTIC, "5L", &sede)
	vip := newUnitAt(t, modelo.KindVIP, "5L", &sede)
	units := []*item.Item{tic, vip}
	cmd := newScanCommand(t, commands.TargetCongelamiento, codesOf(units),
		withLote("LOTE-01"), withDuration(600))

	itemRepo := new(MockItemRepository)
	timerRepo := new(MockTimerRepository)
	configRepo := new(MockTimerConfigRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ItemRepository").Return(itemRepo)
	uow.On("TimerRepository").Return(timerRepo)
	uow.On("TimerConfigRepository").Return(configRepo)
	itemRepo.On("FindByRfids", ctx, mock.Anything).Return(units, nil).Once()
	itemRepo.On("Update", ctx, tic).Return(nil).Once()
	configRepo.On("FindCandidates", ctx, mock.Anything, mock.Anything).Return([]*timer.Config{}, nil).Once()
	timerRepo.On("Upsert", ctx, mock.AnythingOfType("*timer.Timer")).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPhaseUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewScanToPhaseCommandHandler(factory)
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, []string{tic.Rfid().String()}, result.Accepted)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, vip.Rfid().String(), result.Rejected[0].Rfid)
	assert.Equal(t, "solo unidades TIC entran a Congelamiento", result.Rejected[0].Reason)
	assert.Equal(t, item.EnBodega, vip.Estado())
}

func TestScanToPhaseCommandHandler_Handle_RejectsUnknownCode(t *testing.T) {
	sede := kernel.NewUUID()
	ctx := scopedContext(t, &sede, false)

	unit := newUnitAt(t, modelo.KindTIC, "5L", &sede)
	unknown := nextRfid(t).String()
	cmd := newScanCommand(t, commands.TargetCongelamiento,
		[]string{unit.Rfid().String(), unknown}, withLote("LOTE-01"), withDuration(600))

	itemRepo := new(MockItemRepository)
	timerRepo := new(MockTimerRepository)
	configRepo := new(MockTimerConfigRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ItemRepository").Return(itemRepo)
	uow.On("TimerRepository").Return(timerRepo)
	uow.On("TimerConfigRepository").Return(configRepo)
	itemRepo.On("FindByRfids", ctx, mock.Anything).Return([]*item.Item{unit}, nil).Once()
	itemRepo.On("Update", ctx, unit).Return(nil).Once()
	configRepo.On("FindCandidates", ctx, mock.Anything, mock.Anything).Return([]*timer.Config{}, nil).Once()
	timerRepo.On("Upsert", ctx, mock.AnythingOfType("*timer.Timer")).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPhaseUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewScanToPhaseCommandHandler(factory)
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, unknown, result.Rejected[0].Rfid)
	assert.Equal(t, "rfid desconocido", result.Rejected[0].Reason)
}

func TestScanToPhaseCommandHandler_Handle_SedeMismatchBlocks(t *testing.T) {
	callerSede := kernel.NewUUID()
	otherSede := kernel.NewUUID()
	ctx := scopedContext(t, &callerSede, false)

	unit := newUnitAt(t, modelo.KindTIC, "5L", &otherSede)
	cmd := newScanCommand(t, commands.TargetCongelamiento, codesOf([]*item.Item{unit}),
		withLote("LOTE-01"))

	itemRepo := new(MockItemRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ItemRepository").Return(itemRepo)
	itemRepo.On("FindByRfids", ctx, mock.Anything).Return([]*item.Item{unit}, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPhaseUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewScanToPhaseCommandHandler(factory)
	_, err := handler.Handle(ctx, cmd)

	require.Error(t, err)
	var mismatch *errs.SedeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, []string{unit.Rfid().String()}, mismatch.Rfids)
	uow.AssertNotCalled(t, "Commit", ctx)
	assert.Equal(t, item.EnBodega, unit.Estado())
}

func TestScanToPhaseCommandHandler_Handle_AtemperamientoSpreadsLote(t *testing.T) {
	sede := kernel.NewUUID()
	ctx := scopedContext(t, &sede, false)

	frozen := func() *item.Item {
		unit := newUnitAt(t, modelo.KindTIC, "5L", &sede)
		require.NoError(t, unit.StartCongelamiento("LOTE-BATCH"))
		require.NoError(t, unit.MarkCongelado())
		return unit
	}

	trigger := frozen()
	mate := frozen()
	stillFreezing := newUnitAt(t, modelo.KindTIC, "5L", &sede)
	require.NoError(t, stillFreezing.StartCongelamiento("LOTE-BATCH"))

	cmd := newScanCommand(t, commands.TargetAtemperamiento,
		codesOf([]*item.Item{trigger}), withLote("LOTE-BATCH"), withDuration(1800))

	itemRepo := new(MockItemRepository)
	timerRepo := new(MockTimerRepository)
	configRepo := new(MockTimerConfigRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ItemRepository").Return(itemRepo)
	uow.On("TimerRepository").Return(timerRepo)
	uow.On("TimerConfigRepository").Return(configRepo)
	itemRepo.On("FindByRfids", ctx, mock.Anything).Return([]*item.Item{trigger}, nil).Once()
	itemRepo.On("GetByLote", ctx, "LOTE-BATCH").
		Return([]*item.Item{trigger, mate, stillFreezing}, nil).
		Once()
	itemRepo.On("Update", ctx, mock.AnythingOfType("*item.Item")).Return(nil).Times(2)
	configRepo.On("FindCandidates", ctx, mock.Anything, mock.Anything).Return([]*timer.Config{}, nil).Once()
	timerRepo.On("Upsert", ctx, mock.AnythingOfType("*timer.Timer")).Return(nil).Times(2)
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPhaseUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewScanToPhaseCommandHandler(factory)
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{trigger.Rfid().String(), mate.Rfid().String()}, result.Accepted)
	assert.Equal(t, item.Atemperamiento, trigger.SubEstado())
	assert.Equal(t, item.Atemperamiento, mate.SubEstado())
	assert.Equal(t, item.Congelamiento, stillFreezing.SubEstado())
}

func TestScanToPhaseCommandHandler_Handle_DespachoArmsTransitTimer(t *testing.T) {
	sede := kernel.NewUUID()
	ctx := scopedContext(t, &sede, false)
	cajaID := kernel.NewUUID()

	unit := newTemperedTic(t, "5L", &sede)
	require.NoError(t, unit.EnterEnsamblaje(cajaID, "CAJA-5L-AAAA1111"))
	require.NoError(t, unit.MarkEnsamblado())
	require.NoError(t, unit.MarkListaParaDespacho())

	cmd := newScanCommand(t, commands.TargetDespacho, codesOf([]*item.Item{unit}),
		withDuration(86400), withSalida("-18.0"))

	itemRepo := new(MockItemRepository)
	timerRepo := new(MockTimerRepository)
	configRepo := new(MockTimerConfigRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ItemRepository").Return(itemRepo)
	uow.On("TimerRepository").Return(timerRepo)
	uow.On("TimerConfigRepository").Return(configRepo)
	itemRepo.On("FindByRfids", ctx, mock.Anything).Return([]*item.Item{unit}, nil).Once()
	itemRepo.On("Update", ctx, unit).Return(nil).Once()
	configRepo.On("FindCandidates", ctx, mock.Anything, mock.Anything).Return([]*timer.Config{}, nil).Once()
	timerRepo.On("Get", ctx, timer.OwnerCaja, cajaID.String(), timer.PhaseEnsamblaje).
		Return(nil, errs.NewObjectNotFoundError("timer", cajaID.String())).
		Once()
	timerRepo.On("Upsert", ctx, mock.AnythingOfType("*timer.Timer")).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPhaseUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewScanToPhaseCommandHandler(factory)
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, []string{unit.Rfid().String()}, result.Accepted)
	assert.Equal(t, item.Operacion, unit.Estado())
	assert.Equal(t, item.Transito, unit.SubEstado())
	require.NotNil(t, unit.TempSalidaC())
	assert.Equal(t, "-18.0", *unit.TempSalidaC())

	var armed *timer.Timer
	for _, call := range timerRepo.Calls {
		if call.Method == "Upsert" {
			armed = call.Arguments[1].(*timer.Timer)
		}
	}
	require.NotNil(t, armed)
	assert.Equal(t, timer.OwnerCaja, armed.OwnerType())
	assert.Equal(t, cajaID.String(), armed.OwnerRef())
	assert.Equal(t, timer.PhaseTransito, armed.Phase())
	assert.Equal(t, int64(86400), *armed.DurationSec())
}

func TestScanToPhaseCommandHandler_Handle_RetornoRecordsTemperature(t *testing.T) {
	sede := kernel.NewUUID()
	ctx := scopedContext(t, &sede, false)

	unit := newTemperedTic(t, "5L", &sede)
	require.NoError(t, unit.EnterEnsamblaje(kernel.NewUUID(), "CAJA-5L-BBBB2222"))
	require.NoError(t, unit.MarkEnsamblado())
	require.NoError(t, unit.MarkListaParaDespacho())
	require.NoError(t, unit.Despachar(nil, nil))

	cmd := newScanCommand(t, commands.TargetRetorno, codesOf([]*item.Item{unit}), withLlegada("3.8"))

	itemRepo := new(MockItemRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ItemRepository").Return(itemRepo)
	itemRepo.On("FindByRfids", ctx, mock.Anything).Return([]*item.Item{unit}, nil).Once()
	itemRepo.On("Update", ctx, unit).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPhaseUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewScanToPhaseCommandHandler(factory)
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, []string{unit.Rfid().String()}, result.Accepted)
	assert.Equal(t, item.Retorno, unit.SubEstado())
	require.NotNil(t, unit.TempLlegadaC())
	assert.Equal(t, "3.8", *unit.TempLlegadaC())
}

func TestScanToPhaseCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.ScanToPhaseCommand{} // not constructed properly

	factory := new(MockPhaseUoWFactory)
	handler := commands.NewScanToPhaseCommandHandler(factory)
	_, err := handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, commands.ErrScanToPhaseCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func TestScanToPhaseCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := t.Context()
	cmd := newScanCommand(t, commands.TargetAtemperado, []string{nextRfid(t).String()})

	uow := new(MockUoW)
	factory := new(MockPhaseUoWFactory)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(errors.New("begin error")).Once(),
	)

	handler := commands.NewScanToPhaseCommandHandler(factory)
	_, err := handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.EqualError(t, err, "begin error")
}
