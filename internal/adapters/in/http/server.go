// Package http exposes the workflow engine over an echo JSON API. Handlers
// translate between wire DTOs and use case commands/queries; all domain rules
// live below the application layer.
package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"coldchain/internal/core/application/usecases/commands"
	"coldchain/internal/core/application/usecases/queries"
	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/timer"
)

// Handlers bundles every use case the server exposes.
type Handlers struct {
	RegisterItems      commands.RegisterItemsCommandHandler
	ScanToPhase        commands.ScanToPhaseCommandHandler
	CreateCaja         commands.CreateCajaCommandHandler
	StartTimer         commands.StartTimerCommandHandler
	ClearTimer         commands.ClearTimerCommandHandler
	CompleteTimer      commands.CompleteTimerCommandHandler
	SweepTimers        commands.SweepExpiredTimersCommandHandler
	ProcessDevolution  commands.ProcessDevolutionCommandHandler
	CompleteInspeccion commands.CompleteInspeccionCommandHandler
	RegisterNovedad    commands.RegisterNovedadCommandHandler
	StartTraslado      commands.StartTrasladoCommandHandler
	ReceiveTraslado    commands.ReceiveTrasladoCommandHandler

	ListItems          queries.ListItemsQueryHandler
	GetCaja            queries.GetCajaQueryHandler
	ValidateCaja       queries.ValidateCajaQueryHandler
	EvaluateDevolucion queries.EvaluateDevolucionQueryHandler
}

// Server coordinates between HTTP requests and application use cases.
type Server struct {
	h Handlers
}

// NewServer creates the HTTP server facade over the given use case handlers.
func NewServer(h Handlers) *Server {
	return &Server{h: h}
}

// RegisterRoutes mounts every route on the echo instance. All tenant-scoped
// routes sit behind the identity middleware; /health stays open for probes.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})

	api := e.Group("/api/v1", TenantScope())
	api.POST("/items", s.PostItems)
	api.POST("/items/scan", s.PostItemsScan)
	api.GET("/items", s.GetItems)
	api.POST("/cajas/validate", s.PostCajasValidate)
	api.POST("/cajas", s.PostCajas)
	api.GET("/cajas/:id", s.GetCaja)
	api.POST("/cajas/:id/devolucion/evaluate", s.PostDevolucionEvaluate)
	api.POST("/cajas/:id/devolucion", s.PostDevolucion)
	api.POST("/cajas/:id/inspeccion/complete", s.PostInspeccionComplete)
	api.POST("/timers/start", s.PostTimersStart)
	api.POST("/timers/clear", s.PostTimersClear)
	api.POST("/timers/complete", s.PostTimersComplete)
	api.POST("/novedades", s.PostNovedades)
	api.POST("/traslados", s.PostTraslados)
	api.POST("/traslados/receive", s.PostTrasladosReceive)
}

// PostItems handles POST /api/v1/items - intake registration of a tag batch.
func (s *Server) PostItems(c echo.Context) error {
	var req registerItemsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.AllowSedeTransfer {
		if err := allowTransfer(c); err != nil {
			return respondError(c, err)
		}
	}
	ctx := c.Request().Context()

	modeloID, err := kernel.UUIDFromString(req.ModeloID)
	if err != nil {
		return respondError(c, err)
	}
	zonaID, err := parseOptionalUUID(req.ZonaID)
	if err != nil {
		return respondError(c, err)
	}
	seccionID, err := parseOptionalUUID(req.SeccionID)
	if err != nil {
		return respondError(c, err)
	}

	scope, err := kernel.ScopeFromContext(ctx)
	if err != nil {
		return respondError(c, err)
	}

	cmd, err := commands.NewRegisterItemsCommand(req.Rfids, modeloID, scope.SedeID(), zonaID, seccionID)
	if err != nil {
		return respondError(c, err)
	}

	result, err := s.h.RegisterItems.Handle(ctx, cmd)
	if err != nil {
		return respondError(c, err)
	}

	resp := registerItemsResponse{
		Registered: make([]registeredItemResponse, 0, len(result.Registered)),
		Rejected:   make([]rejectedItemResponse, 0, len(result.Rejected)),
	}
	for _, reg := range result.Registered {
		resp.Registered = append(resp.Registered, registeredItemResponse{
			ID:   reg.ID.String(),
			Rfid: reg.Rfid,
		})
	}
	for _, rej := range result.Rejected {
		resp.Rejected = append(resp.Rejected, rejectedItemResponse{Rfid: rej.Rfid, Reason: rej.Reason})
	}

	return c.JSON(http.StatusCreated, resp)
}

// PostItemsScan handles POST /api/v1/items/scan - moves scanned units into a
// phase.
func (s *Server) PostItemsScan(c echo.Context) error {
	var req scanRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.AllowSedeTransfer {
		if err := allowTransfer(c); err != nil {
			return respondError(c, err)
		}
	}

	target, err := commands.ParseScanTarget(req.Target)
	if err != nil {
		return respondError(c, err)
	}

	cmd, err := commands.NewScanToPhaseCommand(
		target, req.Codes, req.Lote, req.DurationSec,
		req.TempSalidaC, req.TempLlegadaC, req.SensorID,
	)
	if err != nil {
		return respondError(c, err)
	}

	result, err := s.h.ScanToPhase.Handle(c.Request().Context(), cmd)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, toScanResponse(result))
}

// GetItems handles GET /api/v1/items - phase listing. For timed phases the
// lazy sweep runs first, so expired countdowns are settled before the read.
func (s *Server) GetItems(c echo.Context) error {
	var estado *item.Estado
	if raw := c.QueryParam("estado"); raw != "" {
		parsed, err := item.ParseEstado(raw)
		if err != nil {
			return respondError(c, err)
		}
		estado = &parsed
	}

	var subEstado *item.SubEstado
	if raw := c.QueryParam("sub_estado"); raw != "" {
		parsed, err := item.ParseSubEstado(raw)
		if err != nil {
			return respondError(c, err)
		}
		subEstado = &parsed
	}

	var lote *string
	if raw := c.QueryParam("lote"); raw != "" {
		lote = &raw
	}

	ctx := c.Request().Context()
	if err := s.sweepPhases(ctx, estado); err != nil {
		return respondError(c, err)
	}

	query, err := queries.NewListItemsQuery(estado, subEstado, lote)
	if err != nil {
		return respondError(c, err)
	}

	rows, err := s.h.ListItems.Handle(ctx, query)
	if err != nil {
		return respondError(c, err)
	}

	resp := make([]itemResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, itemResponse{
			ID:          row.ID.String(),
			Rfid:        row.Rfid,
			ModeloID:    row.ModeloID.String(),
			Kind:        row.Kind,
			Litraje:     row.Litraje,
			Estado:      row.Estado,
			SubEstado:   row.SubEstado,
			Activo:      row.Activo,
			SedeID:      optionalUUIDString(row.SedeID),
			CajaID:      optionalUUIDString(row.CajaID),
			Lote:        row.Lote,
			NumeroOrden: row.NumeroOrden,
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// PostCajasValidate handles POST /api/v1/cajas/validate - composition
// pre-check of eight scanned codes.
func (s *Server) PostCajasValidate(c echo.Context) error {
	var req validateCajaRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	query, err := queries.NewValidateCajaQuery(req.Codes)
	if err != nil {
		return respondError(c, err)
	}

	result, err := s.h.ValidateCaja.Handle(c.Request().Context(), query)
	if err != nil {
		return respondError(c, err)
	}

	resp := validateCajaResponse{
		Cubes:   result.Cubes,
		Vips:    result.Vips,
		Tics:    result.Tics,
		Valid:   make([]validUnitResponse, 0, len(result.Valid)),
		Invalid: make([]rejectedItemResponse, 0, len(result.Invalid)),
		IsValid: result.IsValid,
	}
	for _, v := range result.Valid {
		resp.Valid = append(resp.Valid, validUnitResponse{Rfid: v.Rfid, Rol: v.Rol, Litraje: v.Litraje})
	}
	for _, inv := range result.Invalid {
		resp.Invalid = append(resp.Invalid, rejectedItemResponse{Rfid: inv.Rfid, Reason: inv.Reason})
	}

	return c.JSON(http.StatusOK, resp)
}

// PostCajas handles POST /api/v1/cajas - composes a box from eight codes.
func (s *Server) PostCajas(c echo.Context) error {
	var req createCajaRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.AllowSedeTransfer {
		if err := allowTransfer(c); err != nil {
			return respondError(c, err)
		}
	}

	ordenIDs := make([]kernel.UUID, 0, len(req.OrdenIDs))
	for _, raw := range req.OrdenIDs {
		id, err := kernel.UUIDFromString(raw)
		if err != nil {
			return respondError(c, err)
		}
		ordenIDs = append(ordenIDs, id)
	}

	cmd, err := commands.NewCreateCajaCommand(req.Codes, ordenIDs)
	if err != nil {
		return respondError(c, err)
	}

	result, err := s.h.CreateCaja.Handle(c.Request().Context(), cmd)
	if err != nil {
		return respondError(c, err)
	}

	resp := createCajaResponse{
		CajaID:   result.CajaID.String(),
		Lote:     result.Lote,
		OrdenIDs: make([]string, 0, len(result.OrdenIDs)),
	}
	for _, id := range result.OrdenIDs {
		resp.OrdenIDs = append(resp.OrdenIDs, id.String())
	}

	return c.JSON(http.StatusCreated, resp)
}

// GetCaja handles GET /api/v1/cajas/:id - box detail with members and timers.
func (s *Server) GetCaja(c echo.Context) error {
	cajaID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	query, err := queries.NewGetCajaQuery(cajaID)
	if err != nil {
		return respondError(c, err)
	}

	result, err := s.h.GetCaja.Handle(c.Request().Context(), query)
	if err != nil {
		return respondError(c, err)
	}

	resp := cajaResponse{
		ID:        result.ID.String(),
		Lote:      result.Lote,
		Litraje:   result.Litraje,
		CreatedAt: result.CreatedAt,
		Members:   make([]cajaMemberResponse, 0, len(result.Members)),
		OrdenIDs:  make([]string, 0, len(result.OrdenIDs)),
		Timers:    make([]cajaTimerResponse, 0, len(result.Timers)),
	}
	for _, m := range result.Members {
		resp.Members = append(resp.Members, cajaMemberResponse{
			ItemID:    m.ItemID.String(),
			Rfid:      m.Rfid,
			Rol:       m.Rol,
			Estado:    m.Estado,
			SubEstado: m.SubEstado,
			Activo:    m.Activo,
		})
	}
	for _, id := range result.OrdenIDs {
		resp.OrdenIDs = append(resp.OrdenIDs, id.String())
	}
	for _, t := range result.Timers {
		resp.Timers = append(resp.Timers, cajaTimerResponse{
			Phase:       t.Phase,
			Active:      t.Active,
			StartedAt:   t.StartedAt,
			DurationSec: t.DurationSec,
			CompletedAt: t.CompletedAt,
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// PostDevolucionEvaluate handles POST /api/v1/cajas/:id/devolucion/evaluate -
// reuse evaluation without side effects.
func (s *Server) PostDevolucionEvaluate(c echo.Context) error {
	cajaID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	var req devolucionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	query, err := queries.NewEvaluateDevolucionQuery(cajaID, req.ReuseThresholdSec)
	if err != nil {
		return respondError(c, err)
	}

	result, err := s.h.EvaluateDevolucion.Handle(c.Request().Context(), query)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, toEvaluationResponse(result))
}

// PostDevolucion handles POST /api/v1/cajas/:id/devolucion - receives the
// returning box and routes it to reuse or inspection.
func (s *Server) PostDevolucion(c echo.Context) error {
	cajaID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	var req devolucionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.AllowSedeTransfer {
		if err := allowTransfer(c); err != nil {
			return respondError(c, err)
		}
	}

	cmd, err := commands.NewProcessDevolutionCommand(cajaID, req.ReuseThresholdSec)
	if err != nil {
		return respondError(c, err)
	}

	result, err := s.h.ProcessDevolution.Handle(c.Request().Context(), cmd)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, toDevolucionResponse(result))
}

// PostInspeccionComplete handles POST /api/v1/cajas/:id/inspeccion/complete -
// closes the inspection with the full TIC confirmation set.
func (s *Server) PostInspeccionComplete(c echo.Context) error {
	cajaID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	var req completeInspeccionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.AllowSedeTransfer {
		if err := allowTransfer(c); err != nil {
			return respondError(c, err)
		}
	}

	confirmations := make([]commands.InspeccionConfirmation, 0, len(req.Confirmations))
	for _, conf := range req.Confirmations {
		rfid, err := kernel.NewRfid(conf.Rfid)
		if err != nil {
			return respondError(c, err)
		}
		confirmations = append(confirmations, commands.InspeccionConfirmation{
			Rfid:         rfid,
			Limpieza:     conf.Limpieza,
			Fugas:        conf.Fugas,
			Desinfeccion: conf.Desinfeccion,
		})
	}

	cmd, err := commands.NewCompleteInspeccionCommand(cajaID, confirmations)
	if err != nil {
		return respondError(c, err)
	}

	if err := s.h.CompleteInspeccion.Handle(c.Request().Context(), cmd); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// PostTimersStart handles POST /api/v1/timers/start - arms a cronometer.
func (s *Server) PostTimersStart(c echo.Context) error {
	req, ownerType, phase, err := s.bindTimerRequest(c)
	if err != nil {
		return respondError(c, err)
	}

	var duration int64
	if req.DurationSec != nil {
		duration = *req.DurationSec
	}

	cmd, err := commands.NewStartTimerCommand(ownerType, req.OwnerRef, phase, duration, req.Lote)
	if err != nil {
		return respondError(c, err)
	}

	if err := s.h.StartTimer.Handle(c.Request().Context(), cmd); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// PostTimersClear handles POST /api/v1/timers/clear - deactivates a
// cronometer without touching unit state.
func (s *Server) PostTimersClear(c echo.Context) error {
	req, ownerType, phase, err := s.bindTimerRequest(c)
	if err != nil {
		return respondError(c, err)
	}

	cmd, err := commands.NewStopTimerCommand(ownerType, req.OwnerRef, phase)
	if err != nil {
		return respondError(c, err)
	}

	if err := s.h.ClearTimer.Handle(c.Request().Context(), cmd); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// PostTimersComplete handles POST /api/v1/timers/complete - completes a
// cronometer early and applies the phase's done transition.
func (s *Server) PostTimersComplete(c echo.Context) error {
	req, ownerType, phase, err := s.bindTimerRequest(c)
	if err != nil {
		return respondError(c, err)
	}

	cmd, err := commands.NewStopTimerCommand(ownerType, req.OwnerRef, phase)
	if err != nil {
		return respondError(c, err)
	}

	if err := s.h.CompleteTimer.Handle(c.Request().Context(), cmd); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// PostNovedades handles POST /api/v1/novedades - reports an incident and
// disables the unit.
func (s *Server) PostNovedades(c echo.Context) error {
	var req novedadRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.AllowSedeTransfer {
		if err := allowTransfer(c); err != nil {
			return respondError(c, err)
		}
	}

	rfid, err := kernel.NewRfid(req.Rfid)
	if err != nil {
		return respondError(c, err)
	}

	cmd, err := commands.NewRegisterNovedadCommand(rfid, req.Motivo)
	if err != nil {
		return respondError(c, err)
	}

	if err := s.h.RegisterNovedad.Handle(c.Request().Context(), cmd); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusCreated)
}

// PostTraslados handles POST /api/v1/traslados - starts relocating units to
// another sede.
func (s *Server) PostTraslados(c echo.Context) error {
	var req startTrasladoRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.AllowSedeTransfer {
		if err := allowTransfer(c); err != nil {
			return respondError(c, err)
		}
	}

	sedeDestino, err := kernel.UUIDFromString(req.SedeDestino)
	if err != nil {
		return respondError(c, err)
	}

	cmd, err := commands.NewStartTrasladoCommand(req.Codes, sedeDestino)
	if err != nil {
		return respondError(c, err)
	}

	result, err := s.h.StartTraslado.Handle(c.Request().Context(), cmd)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, toScanResponse(result))
}

// PostTrasladosReceive handles POST /api/v1/traslados/receive - confirms
// arrival of relocated units at the caller's sede.
func (s *Server) PostTrasladosReceive(c echo.Context) error {
	var req receiveTrasladoRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	cmd, err := commands.NewReceiveTrasladoCommand(req.Codes)
	if err != nil {
		return respondError(c, err)
	}

	result, err := s.h.ReceiveTraslado.Handle(c.Request().Context(), cmd)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, toScanResponse(result))
}

func (s *Server) bindTimerRequest(c echo.Context) (timerRequest, timer.OwnerType, timer.Phase, error) {
	var req timerRequest
	if err := c.Bind(&req); err != nil {
		return req, timer.OwnerUnknown, timer.PhaseUnknown, err
	}

	ownerType, err := timer.ParseOwnerType(req.OwnerType)
	if err != nil {
		return req, timer.OwnerUnknown, timer.PhaseUnknown, err
	}

	phase, err := timer.ParsePhase(req.Phase)
	if err != nil {
		return req, ownerType, timer.PhaseUnknown, err
	}

	return req, ownerType, phase, nil
}

// sweepPhases runs the lazy sweep for every timed phase the listing may
// surface, so the response never shows a countdown that already ran out.
func (s *Server) sweepPhases(ctx context.Context, estado *item.Estado) error {
	for _, phase := range phasesFor(estado) {
		cmd, err := commands.NewSweepExpiredTimersCommand(phase)
		if err != nil {
			return err
		}
		if err := s.h.SweepTimers.Handle(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}

// phasesFor maps a listing filter to the timed phases whose expiry could
// change the listing's outcome. An unfiltered listing settles everything.
func phasesFor(estado *item.Estado) []timer.Phase {
	if estado == nil {
		return []timer.Phase{
			timer.PhaseCongelamiento,
			timer.PhaseAtemperamiento,
			timer.PhaseEnsamblaje,
			timer.PhaseTransito,
			timer.PhasePendienteInspeccion,
			timer.PhaseInspeccion,
		}
	}

	switch *estado {
	case item.EnBodega:
		// Pendiente-inspección units rest En bodega; their expiry moves
		// them out of this listing.
		return []timer.Phase{timer.PhasePendienteInspeccion}
	case item.PreAcondicionamiento:
		return []timer.Phase{timer.PhaseCongelamiento, timer.PhaseAtemperamiento}
	case item.Acondicionamiento:
		return []timer.Phase{timer.PhaseEnsamblaje}
	case item.Operacion:
		return []timer.Phase{timer.PhaseTransito}
	case item.Inspeccion:
		return []timer.Phase{timer.PhasePendienteInspeccion, timer.PhaseInspeccion}
	default:
		return nil
	}
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, Problem{
		Code:    "VALIDATION_ERROR",
		Message: message,
	})
}

func parseOptionalUUID(raw *string) (*kernel.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := kernel.UUIDFromString(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func optionalUUIDString(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
