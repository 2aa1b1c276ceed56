package commands_test

import (
	"errors"
	"testing"

	"coldchain/internal/core/application/usecases/commands"
	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/modelo"
	"coldchain/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStartTrasladoCommandHandler_Handle_Success(t *testing.T) {
	origen := kernel.NewUUID()
	destino := kernel.NewUUID()
	ctx := scopedContext(t, &origen, false)

	units := []*item.Item{
		newUnitAt(t, modelo.KindTIC, "5L", &origen),
		newUnitAt(t, modelo.KindVIP, "5L", &origen),
	}
	cmd, err := commands.NewStartTrasladoCommand(codesOf(units), destino)
	require.NoError(t, err)

	itemRepo := new(MockItemRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ItemRepository").Return(itemRepo)
	itemRepo.On("FindByRfids", ctx, mock.Anything).Return(units, nil).Once()
	itemRepo.On("Update", ctx, mock.AnythingOfType("*item.Item")).Return(nil).Times(2)
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockItemUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewStartTrasladoCommandHandler(factory)
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, codesOf(units), result.Accepted)
	assert.Empty(t, result.Rejected)
	for _, unit := range units {
		assert.Equal(t, item.EnTraslado, unit.Estado())
	}

	itemRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestStartTrasladoCommandHandler_Handle_RejectsUnitAlreadyAtDestination(t *testing.T) {
	origen := kernel.NewUUID()
	ctx := scopedContext(t, &origen, true)

	atDestino := newUnitAt(t, modelo.KindTIC, "5L", &origen)
	cmd, err := commands.NewStartTrasladoCommand(codesOf([]*item.Item{atDestino}), origen)
	require.NoError(t, err)

	itemRepo := new(MockItemRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ItemRepository").Return(itemRepo)
	itemRepo.On("FindByRfids", ctx, mock.Anything).Return([]*item.Item{atDestino}, nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockItemUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewStartTrasladoCommandHandler(factory)
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Empty(t, result.Accepted)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "la unidad ya está en la sede destino", result.Rejected[0].Reason)
	itemRepo.AssertNotCalled(t, "Update", ctx, atDestino)
}

func TestStartTrasladoCommandHandler_Handle_RejectsBusyUnit(t *testing.T) {
	origen := kernel.NewUUID()
	destino := kernel.NewUUID()
	ctx := scopedContext(t, &origen, false)

	busy := newUnitAt(t, modelo.KindTIC, "5L", &origen)
	require.NoError(t, busy.StartCongelamiento("LOTE-BUSY"))
	resting := newUnitAt(t, modelo.KindTIC, "5L", &origen)

	cmd, err := commands.NewStartTrasladoCommand(codesOf([]*item.Item{busy, resting}), destino)
	require.NoError(t, err)

	itemRepo := new(MockItemRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ItemRepository").Return(itemRepo)
	itemRepo.On("FindByRfids", ctx, mock.Anything).Return([]*item.Item{busy, resting}, nil).Once()
	itemRepo.On("Update", ctx, resting).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockItemUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewStartTrasladoCommandHandler(factory)
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, []string{resting.Rfid().String()}, result.Accepted)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, busy.Rfid().String(), result.Rejected[0].Rfid)
	assert.NotEqual(t, item.EnTraslado, busy.Estado())
}

func TestStartTrasladoCommandHandler_Handle_SedeMismatchBlocks(t *testing.T) {
	callerSede := kernel.NewUUID()
	otherSede := kernel.NewUUID()
	destino := kernel.NewUUID()
	ctx := scopedContext(t, &callerSede, false)

	foreign := newUnitAt(t, modelo.KindTIC, "5L", &otherSede)
	cmd, err := commands.NewStartTrasladoCommand(codesOf([]*item.Item{foreign}), destino)
	require.NoError(t, err)

	itemRepo := new(MockItemRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ItemRepository").Return(itemRepo)
	itemRepo.On("FindByRfids", ctx, mock.Anything).Return([]*item.Item{foreign}, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockItemUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewStartTrasladoCommandHandler(factory)
	_, err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrSedeMismatch)
	uow.AssertNotCalled(t, "Commit", ctx)
}

func TestStartTrasladoCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.StartTrasladoCommand{} // not constructed properly

	factory := new(MockItemUoWFactory)
	handler := commands.NewStartTrasladoCommandHandler(factory)
	_, err := handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, commands.ErrStartTrasladoCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func TestReceiveTrasladoCommandHandler_Handle_Success(t *testing.T) {
	origen := kernel.NewUUID()
	destino := kernel.NewUUID()
	ctx := scopedContext(t, &destino, false)

	unit := newUnitAt(t, modelo.KindTIC, "5L", &origen)
	require.NoError(t, unit.StartTraslado())
	cmd, err := commands.NewReceiveTrasladoCommand(codesOf([]*item.Item{unit}))
	require.NoError(t, err)

	itemRepo := new(MockItemRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ItemRepository").Return(itemRepo)
	itemRepo.On("FindByRfids", ctx, mock.Anything).Return([]*item.Item{unit}, nil).Once()
	itemRepo.On("Update", ctx, unit).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockItemUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewReceiveTrasladoCommandHandler(factory)
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, []string{unit.Rfid().String()}, result.Accepted)
	assert.Equal(t, item.EnBodega, unit.Estado())
	require.NotNil(t, unit.SedeID())
	assert.Equal(t, destino, *unit.SedeID())
}

func TestReceiveTrasladoCommandHandler_Handle_RejectsUnitNotInTransit(t *testing.T) {
	destino := kernel.NewUUID()
	ctx := scopedContext(t, &destino, false)

	resting := newUnitAt(t, modelo.KindTIC, "5L", &destino)
	cmd, err := commands.NewReceiveTrasladoCommand(codesOf([]*item.Item{resting}))
	require.NoError(t, err)

	itemRepo := new(MockItemRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ItemRepository").Return(itemRepo)
	itemRepo.On("FindByRfids", ctx, mock.Anything).Return([]*item.Item{resting}, nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockItemUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewReceiveTrasladoCommandHandler(factory)
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Empty(t, result.Accepted)
	require.Len(t, result.Rejected, 1)
	itemRepo.AssertNotCalled(t, "Update", ctx, resting)
}

func TestReceiveTrasladoCommandHandler_Handle_UnpinnedCallerRejected(t *testing.T) {
	ctx := scopedContext(t, nil, false)

	cmd, err := commands.NewReceiveTrasladoCommand([]string{nextRfid(t).String()})
	require.NoError(t, err)

	factory := new(MockItemUoWFactory)
	handler := commands.NewReceiveTrasladoCommandHandler(factory)
	_, err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
	factory.AssertNotCalled(t, "Create")
}

func TestReceiveTrasladoCommandHandler_Handle_BeginError(t *testing.T) {
	destino := kernel.NewUUID()
	ctx := scopedContext(t, &destino, false)

	cmd, err := commands.NewReceiveTrasladoCommand([]string{nextRfid(t).String()})
	require.NoError(t, err)

	uow := new(MockUoW)
	factory := new(MockItemUoWFactory)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(errors.New("begin error")).Once(),
	)

	handler := commands.NewReceiveTrasladoCommandHandler(factory)
	_, err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.EqualError(t, err, "begin error")
}
