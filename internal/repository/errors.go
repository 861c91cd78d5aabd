package repository

import (
	"context"
	"database/sql/driver"
	stderrors "errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/emilythestrangee/social-graph/backend/pkg/errors"
)

// translate maps gorm and pgx failures onto AppError codes. AppErrors pass through.
func translate(err error, notFound string) error {
	if err == nil {
		return nil
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}

	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return errors.New(errors.ErrCodeNotFound, notFound)
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrap(err, errors.ErrCodeConflict, "record already exists")
	case isTransient(err):
		return errors.Wrap(err, errors.ErrCodeTransient, "database unavailable")
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && pgErr.Code == "23505" {
		return errors.Wrap(err, errors.ErrCodeConflict, "record already exists")
	}
	return errors.Wrap(err, errors.ErrCodeInternalError, "database error")
}

func isTransient(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) ||
		stderrors.Is(err, context.Canceled) ||
		stderrors.Is(err, driver.ErrBadConn) ||
		pgconn.Timeout(err) {
		return true
	}

	var connErr *pgconn.ConnectError
	if stderrors.As(err, &connErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		switch {
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08": // connection exception
			return true
		case pgErr.Code == "40001", pgErr.Code == "40P01", pgErr.Code == "57P01", pgErr.Code == "57014":
			return true
		}
	}

	var netErr net.Error
	return stderrors.As(err, &netErr)
}
