package helper

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsUniqueViolation juga mengenali pesan sqlite (mode lokal/test).
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if pgCode(err) == pgUniqueViolation {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate key") ||
		strings.Contains(s, "unique constraint")
}

// MapPGError memetakan error DB ke *fiber.Error. conflictMsg dipakai untuk 23505.
func MapPGError(err error, conflictMsg string) error {
	if err == nil {
		return nil
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}
	switch {
	case IsUniqueViolation(err):
		if conflictMsg == "" {
			conflictMsg = "Data sudah ada"
		}
		return fiber.NewError(fiber.StatusConflict, conflictMsg)
	case pgCode(err) == pgForeignKeyViolation:
		return fiber.NewError(fiber.StatusBadRequest, "Relasi data tidak valid")
	case pgCode(err) == pgCheckViolation:
		return fiber.NewError(fiber.StatusBadRequest, "Nilai tidak memenuhi constraint")
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
