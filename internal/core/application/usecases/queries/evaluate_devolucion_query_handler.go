package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/modelo"
	"coldchain/internal/core/domain/model/timer"
	"coldchain/internal/core/domain/services"
	"coldchain/internal/pkg/errs"
)

// EvaluateDevolucionQueryHandler previews the reuse decision for a returning
// box: loads its members, transit timer and the candidate configuration rows,
// and runs the policy. Nothing is written.
type EvaluateDevolucionQueryHandler struct {
	db     *gorm.DB
	policy services.ReusePolicy
	clock  func() time.Time
}

// NewEvaluateDevolucionQueryHandler creates a reuse evaluation handler.
func NewEvaluateDevolucionQueryHandler(db *gorm.DB) EvaluateDevolucionQueryHandler {
	return EvaluateDevolucionQueryHandler{
		db:     db,
		policy: services.NewReusePolicy(),
		clock:  time.Now,
	}
}

// Handle evaluates the box inside one tenant-pinned read transaction.
func (h EvaluateDevolucionQueryHandler) Handle(
	ctx context.Context,
	query EvaluateDevolucionQuery,
) (EvaluateDevolucionQueryResponse, error) {
	var resp EvaluateDevolucionQueryResponse

	if err := query.Validate(); err != nil {
		return resp, err
	}

	var eval services.ReuseEvaluation
	err := withTenantTx(ctx, h.db, func(tx *gorm.DB) error {
		members, err := loadItems(tx, "ci.caja_id = ?", query.CajaID().String())
		if err != nil {
			return err
		}
		if len(members) == 0 {
			return errs.NewObjectNotFoundError("caja", query.CajaID().String())
		}

		transito, err := h.loadTransitTimer(tx, query.CajaID())
		if err != nil {
			return err
		}

		refs, configs, err := h.loadConfigs(tx, members)
		if err != nil {
			return err
		}

		scope, scopeErr := kernel.ScopeFromContext(ctx)
		if scopeErr != nil {
			return scopeErr
		}

		eval = h.policy.Evaluate(refs, configs, scope.SedeID(), query.RequestedSec(), transito, h.clock())
		return nil
	})
	if err != nil {
		return resp, err
	}

	resp.Reusable = eval.Reusable
	resp.RemainingSec = eval.RemainingSec
	resp.EffectiveSec = eval.EffectiveSec
	resp.RequestedSec = eval.RequestedSec
	resp.Blocked = eval.Blocked
	resp.BlockedReason = eval.BlockedReason
	resp.TimerStatus = string(eval.TimerStatus)
	for _, req := range eval.PerModel {
		resp.PerModel = append(resp.PerModel, ModelRequirementResponse{
			ModeloID:    req.ModeloID,
			Litraje:     req.Litraje,
			RequiredSec: req.RequiredSec,
			Origin:      string(req.Origin),
		})
	}

	return resp, nil
}

func (h EvaluateDevolucionQueryHandler) loadTransitTimer(tx *gorm.DB, cajaID kernel.UUID) (*timer.Timer, error) {
	row := tx.Raw(`
		SELECT id, lote, started_at, duration_sec, active, completed_at
		FROM timers
		WHERE owner_type = ? AND owner_ref = ? AND phase = ?
	`, int(timer.OwnerCaja), cajaID.String(), int(timer.PhaseTransito)).Row()

	var (
		id          uuid.UUID
		lote        *string
		startedAt   *time.Time
		durationSec *int64
		active      bool
		completedAt *time.Time
	)
	if err := row.Scan(&id, &lote, &startedAt, &durationSec, &active, &completedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	timerID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return nil, err
	}
	return timer.RestoreTimer(timerID, timer.OwnerCaja, cajaID.String(), timer.PhaseTransito,
		lote, startedAt, durationSec, active, completedAt)
}

func (h EvaluateDevolucionQueryHandler) loadConfigs(
	tx *gorm.DB,
	members []*item.Item,
) ([]services.ModelRef, []*timer.Config, error) {
	modelSeen := make(map[string]bool)
	litrajeSeen := make(map[string]bool)
	var refs []services.ModelRef
	var modelIDs []string
	var litrajes []string

	for _, member := range members {
		if !modelSeen[member.ModelID().String()] {
			modelSeen[member.ModelID().String()] = true
			modelIDs = append(modelIDs, member.ModelID().String())
			refs = append(refs, services.ModelRef{ModeloID: member.ModelID(), Litraje: member.Litraje()})
		}
		if !litrajeSeen[member.Litraje().String()] {
			litrajeSeen[member.Litraje().String()] = true
			litrajes = append(litrajes, member.Litraje().String())
		}
	}

	rows, err := tx.Raw(`
		SELECT id, sede_id, modelo_id, litraje,
			pre_congelamiento_min_sec, atemperamiento_sec,
			max_sobre_atemperado_sec, vida_util_caja_sec, min_reuso_sec
		FROM timer_configs
		WHERE modelo_id IN ? OR (modelo_id IS NULL AND litraje IN ?)
	`, modelIDs, litrajes).Rows()
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var configs []*timer.Config
	for rows.Next() {
		var (
			id                 uuid.UUID
			sedeID, modeloID   *uuid.UUID
			litraje            string
			preCong, atemp     int64
			maxSobre, vidaUtil int64
			minReuso           int64
		)
		if err = rows.Scan(&id, &sedeID, &modeloID, &litraje,
			&preCong, &atemp, &maxSobre, &vidaUtil, &minReuso); err != nil {
			return nil, nil, err
		}

		cfgID, convErr := kernel.UUIDFromBytes(id[:])
		if convErr != nil {
			return nil, nil, convErr
		}
		sede, convErr := optionalUUID(sedeID)
		if convErr != nil {
			return nil, nil, convErr
		}
		model, convErr := optionalUUID(modeloID)
		if convErr != nil {
			return nil, nil, convErr
		}
		lit, litErr := modelo.NewLitraje(litraje)
		if litErr != nil {
			return nil, nil, litErr
		}

		cfg, cfgErr := timer.NewConfig(cfgID, sede, model, lit, preCong, atemp, maxSobre, vidaUtil, minReuso)
		if cfgErr != nil {
			return nil, nil, cfgErr
		}
		configs = append(configs, cfg)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}
	return refs, configs, nil
}
