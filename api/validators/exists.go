package validators

import (
	"context"

	pkgerrors "github.com/angelmondragon/basket-activity/pkg/errors"
)

// ExistenceChecker reports whether a referenced row exists.
type ExistenceChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// RequireExisting fails with a field-level validation error when id is unknown.
func RequireExisting(ctx context.Context, checker ExistenceChecker, field string, id uint) error {
	ok, err := checker.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{field: "does not exist"})
	}
	return nil
}
