package service

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/tabsplit/internal/session"
	"github.com/mmynk/tabsplit/internal/storage"
)

var (
	errSessionRequired = errors.New("session token required")
	errWrongSession    = errors.New("token does not grant access to this session")
)

// toConnectError maps domain and storage errors onto Connect codes.
func toConnectError(op string, err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, session.ErrItemNotFound),
		errors.Is(err, session.ErrPersonNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, session.ErrNoItems),
		errors.Is(err, session.ErrTooFewPeople),
		errors.Is(err, session.ErrUnassignedItems):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, session.ErrEmptyName),
		errors.Is(err, session.ErrDuplicatePerson),
		errors.Is(err, session.ErrInvalidPrice),
		errors.Is(err, session.ErrInvalidQuantity),
		errors.Is(err, session.ErrInvalidTip):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		slog.Error(op+" failed", "error", err)
		return connect.NewError(connect.CodeInternal, err)
	}
}
