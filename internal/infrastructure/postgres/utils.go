package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/medequipos-api/internal/domain"
)

// Códigos de error de PostgreSQL que se traducen a errores de dominio.
const (
	pgInvalidText          = "22P02"
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
)

// isInvalidID indica que un ID no tiene formato UUID (22P02): equivale a "no existe".
func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidText
}

// nullIfEmpty convierte "" en NULL.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// mapError envuelve err con op y lo traduce a un error de dominio cuando corresponde:
// bloqueos y conflictos de serialización son errores de concurrencia (reintentables),
// violaciones únicas son duplicados y las de CHECK indican un estado inválido (interno).
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgSerializationFailure, pgDeadlockDetected, pgQueryCanceled:
			return domain.NewError(domain.ErrConcurrency, "el stock está siendo modificado por otra operación; reintente")
		case pgUniqueViolation:
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, domain.ErrDuplicate)
		case pgCheckViolation:
			return domain.NewError(domain.ErrInternal, "%s: restricción %s violada", op, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
