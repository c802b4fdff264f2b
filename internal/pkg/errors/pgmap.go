package errors

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Constraint names created by data/db/migrate.go.
const (
	ConstraintManagerSlotActive = "idx_connection_manager_slot_active"
	ConstraintWorkerActive      = "idx_connection_worker_active"
	ConstraintManagerCodeActive = "idx_manager_code_active"
)

// pgCodeDefault maps a bare Postgres SQLSTATE to the Code it represents
// when no more specific constraint-name mapping applies.
var pgCodeDefault = map[string]Code{
	"23505": CodeValidation, // unique_violation, unmapped constraint
	"23503": CodeValidation, // foreign_key_violation
	"40001": CodeInternal,   // serialization_failure
	"40P01": CodeInternal,   // deadlock_detected
	"55P03": CodeInternal,   // lock_not_available
}

// constraintOverride maps a 23505's constraint name to the specific Code
// it should surface as, rather than the generic CodeValidation default —
// needed wherever one table carries more than one partial unique index
// that callers must be able to tell apart.
func constraintOverride(constraintName string) (Code, bool) {
	switch constraintName {
	case ConstraintManagerSlotActive:
		return CodeSlotOccupied, true
	case ConstraintWorkerActive:
		return CodeWorkerAlreadyConnected, true
	case ConstraintManagerCodeActive:
		return CodeCodeCollision, true
	default:
		return "", false
	}
}

// MapConnectionConflict classifies a write against the Connection table's
// two partial unique indexes (spec §4.3: SlotOccupied vs
// WorkerAlreadyConnected are two distinct caller-visible outcomes of the
// same bind() call). Anything else falls through to MapWrite.
func MapConnectionConflict(op string, err error) error {
	return mapConstraint(op, err, ConstraintManagerSlotActive, ConstraintWorkerActive)
}

// MapManagerCodeConflict classifies a write against Manager.code's partial
// unique index, used by manager.Repo.Create.
func MapManagerCodeConflict(op string, err error) error {
	return mapConstraint(op, err, ConstraintManagerCodeActive)
}

// mapConstraint inspects a 23505 for one of the named constraints and
// returns the override Code for it; any other constraint, or any other
// error entirely, falls through to MapWrite.
func mapConstraint(op string, err error, constraints ...string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && pgErr.Code == "23505" {
		for _, c := range constraints {
			if pgErr.ConstraintName == c {
				if code, ok := constraintOverride(c); ok {
					return Wrap(code, op, err)
				}
			}
		}
	}
	return MapWrite(op, err)
}

// MapWrite classifies a generic store failure against pgCodeDefault, with
// a couple of context/not-found/message-sniffing fallbacks ahead of it.
// Callers that need a constraint-specific Code should call one of the
// mappers above first — they already fall back to this for anything they
// don't recognize.
func MapWrite(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if stderrors.As(err, &existing) {
		return err
	}
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(CodeNotFound, op, err)
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return Wrap(CodeTransportFailed, op, err)
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		if code, ok := pgCodeDefault[pgErr.Code]; ok {
			return Wrap(code, op, err)
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "already exists") {
		return Wrap(CodeValidation, op, err)
	}
	return Wrap(CodeInternal, op, err)
}
