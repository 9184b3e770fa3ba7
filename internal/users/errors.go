package users

import (
	"errors"
	"fmt"

	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/shared"
)

func mapErr(err error) error {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return fmt.Errorf("%w: user not found", httpx.ErrNotFound)
	case errors.Is(err, shared.ErrDuplicate):
		return fmt.Errorf("%w: email already registered", httpx.ErrDuplicate)
	default:
		return err
	}
}
