package http

import (
	"time"

	"coldchain/internal/core/application/usecases/commands"
	"coldchain/internal/core/application/usecases/queries"
)

// Request bodies. Mutating requests may carry allow_sede_transfer to
// authorize cross-warehouse movement without repeating the call with the
// header set.

type registerItemsRequest struct {
	Rfids             []string `json:"rfids"`
	ModeloID          string   `json:"modelo_id"`
	ZonaID            *string  `json:"zona_id,omitempty"`
	SeccionID         *string  `json:"seccion_id,omitempty"`
	AllowSedeTransfer bool     `json:"allow_sede_transfer,omitempty"`
}

type scanRequest struct {
	Target            string   `json:"target"`
	Codes             []string `json:"codes"`
	Lote              *string  `json:"lote,omitempty"`
	DurationSec       *int64   `json:"duration_sec,omitempty"`
	TempSalidaC       *string  `json:"temp_salida_c,omitempty"`
	TempLlegadaC      *string  `json:"temp_llegada_c,omitempty"`
	SensorID          *string  `json:"sensor_id,omitempty"`
	AllowSedeTransfer bool     `json:"allow_sede_transfer,omitempty"`
}

type validateCajaRequest struct {
	Codes []string `json:"codes"`
}

type createCajaRequest struct {
	Codes             []string `json:"codes"`
	OrdenIDs          []string `json:"orden_ids,omitempty"`
	AllowSedeTransfer bool     `json:"allow_sede_transfer,omitempty"`
}

type timerRequest struct {
	OwnerType   string  `json:"owner_type"`
	OwnerRef    string  `json:"owner_ref"`
	Phase       string  `json:"phase"`
	DurationSec *int64  `json:"duration_sec,omitempty"`
	Lote        *string `json:"lote,omitempty"`
}

type devolucionRequest struct {
	ReuseThresholdSec *int64 `json:"reuse_threshold_sec,omitempty"`
	AllowSedeTransfer bool   `json:"allow_sede_transfer,omitempty"`
}

type inspeccionConfirmationRequest struct {
	Rfid         string `json:"rfid"`
	Limpieza     bool   `json:"limpieza"`
	Fugas        bool   `json:"fugas"`
	Desinfeccion bool   `json:"desinfeccion"`
}

type completeInspeccionRequest struct {
	Confirmations     []inspeccionConfirmationRequest `json:"confirmations"`
	AllowSedeTransfer bool                            `json:"allow_sede_transfer,omitempty"`
}

type novedadRequest struct {
	Rfid              string `json:"rfid"`
	Motivo            string `json:"motivo"`
	AllowSedeTransfer bool   `json:"allow_sede_transfer,omitempty"`
}

type startTrasladoRequest struct {
	Codes             []string `json:"codes"`
	SedeDestino       string   `json:"sede_destino"`
	AllowSedeTransfer bool     `json:"allow_sede_transfer,omitempty"`
}

type receiveTrasladoRequest struct {
	Codes []string `json:"codes"`
}

// Response bodies.

type registeredItemResponse struct {
	ID   string `json:"id"`
	Rfid string `json:"rfid"`
}

type rejectedItemResponse struct {
	Rfid   string `json:"rfid"`
	Reason string `json:"reason"`
}

type registerItemsResponse struct {
	Registered []registeredItemResponse `json:"registered"`
	Rejected   []rejectedItemResponse   `json:"rejected"`
}

type scanResponse struct {
	Accepted []string               `json:"accepted"`
	Rejected []rejectedItemResponse `json:"rejected"`
}

type itemResponse struct {
	ID          string  `json:"id"`
	Rfid        string  `json:"rfid"`
	ModeloID    string  `json:"modelo_id"`
	Kind        string  `json:"kind"`
	Litraje     string  `json:"litraje"`
	Estado      string  `json:"estado"`
	SubEstado   string  `json:"sub_estado,omitempty"`
	Activo      bool    `json:"activo"`
	SedeID      *string `json:"sede_id,omitempty"`
	CajaID      *string `json:"caja_id,omitempty"`
	Lote        *string `json:"lote,omitempty"`
	NumeroOrden *string `json:"numero_orden,omitempty"`
}

type validUnitResponse struct {
	Rfid    string `json:"rfid"`
	Rol     string `json:"rol"`
	Litraje string `json:"litraje"`
}

type validateCajaResponse struct {
	Cubes   int                    `json:"cubes"`
	Vips    int                    `json:"vips"`
	Tics    int                    `json:"tics"`
	Valid   []validUnitResponse    `json:"valid"`
	Invalid []rejectedItemResponse `json:"invalid"`
	IsValid bool                   `json:"is_valid"`
}

type createCajaResponse struct {
	CajaID   string   `json:"caja_id"`
	Lote     string   `json:"lote"`
	OrdenIDs []string `json:"orden_ids"`
}

type cajaMemberResponse struct {
	ItemID    string `json:"item_id"`
	Rfid      string `json:"rfid"`
	Rol       string `json:"rol"`
	Estado    string `json:"estado"`
	SubEstado string `json:"sub_estado,omitempty"`
	Activo    bool   `json:"activo"`
}

type cajaTimerResponse struct {
	Phase       string     `json:"phase"`
	Active      bool       `json:"active"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	DurationSec *int64     `json:"duration_sec,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type cajaResponse struct {
	ID        string               `json:"id"`
	Lote      string               `json:"lote"`
	Litraje   string               `json:"litraje"`
	CreatedAt time.Time            `json:"created_at"`
	Members   []cajaMemberResponse `json:"members"`
	OrdenIDs  []string             `json:"orden_ids"`
	Timers    []cajaTimerResponse  `json:"timers"`
}

type modelRequirementResponse struct {
	ModeloID    string `json:"modelo_id"`
	Litraje     string `json:"litraje"`
	RequiredSec int64  `json:"required_sec"`
	Origin      string `json:"origin"`
}

type evaluationResponse struct {
	Reusable      bool                       `json:"reusable"`
	RemainingSec  int64                      `json:"remaining_sec"`
	EffectiveSec  int64                      `json:"effective_sec"`
	RequestedSec  *int64                     `json:"requested_sec,omitempty"`
	Blocked       bool                       `json:"blocked"`
	BlockedReason string                     `json:"blocked_reason,omitempty"`
	TimerStatus   string                     `json:"timer_status"`
	PerModel      []modelRequirementResponse `json:"per_model"`
}

type devolucionResponse struct {
	Action     string             `json:"action"`
	Evaluation evaluationResponse `json:"evaluation"`
}

func toScanResponse(result commands.ScanResult) scanResponse {
	resp := scanResponse{
		Accepted: result.Accepted,
		Rejected: make([]rejectedItemResponse, 0, len(result.Rejected)),
	}
	if resp.Accepted == nil {
		resp.Accepted = []string{}
	}
	for _, rej := range result.Rejected {
		resp.Rejected = append(resp.Rejected, rejectedItemResponse{Rfid: rej.Rfid, Reason: rej.Reason})
	}
	return resp
}

func toDevolucionResponse(result commands.DevolutionResult) devolucionResponse {
	eval := result.Evaluation
	out := devolucionResponse{
		Action: result.Action,
		Evaluation: evaluationResponse{
			Reusable:      eval.Reusable,
			RemainingSec:  eval.RemainingSec,
			EffectiveSec:  eval.EffectiveSec,
			RequestedSec:  eval.RequestedSec,
			Blocked:       eval.Blocked,
			BlockedReason: eval.BlockedReason,
			TimerStatus:   string(eval.TimerStatus),
			PerModel:      make([]modelRequirementResponse, 0, len(eval.PerModel)),
		},
	}
	for _, m := range eval.PerModel {
		out.Evaluation.PerModel = append(out.Evaluation.PerModel, modelRequirementResponse{
			ModeloID:    m.ModeloID.String(),
			Litraje:     m.Litraje,
			RequiredSec: m.RequiredSec,
			Origin:      string(m.Origin),
		})
	}
	return out
}

func toEvaluationResponse(resp queries.EvaluateDevolucionQueryResponse) evaluationResponse {
	out := evaluationResponse{
		Reusable:      resp.Reusable,
		RemainingSec:  resp.RemainingSec,
		EffectiveSec:  resp.EffectiveSec,
		RequestedSec:  resp.RequestedSec,
		Blocked:       resp.Blocked,
		BlockedReason: resp.BlockedReason,
		TimerStatus:   resp.TimerStatus,
		PerModel:      make([]modelRequirementResponse, 0, len(resp.PerModel)),
	}
	for _, m := range resp.PerModel {
		out.PerModel = append(out.PerModel, modelRequirementResponse{
			ModeloID:    m.ModeloID.String(),
			Litraje:     m.Litraje,
			RequiredSec: m.RequiredSec,
			Origin:      m.Origin,
		})
	}
	return out
}
