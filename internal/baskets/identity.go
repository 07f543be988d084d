package baskets

import (
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/basket-activity/pkg/errors"
)

// Identity names the owner of a basket: a registered user or an anonymous
// browser session. Exactly one of the two fields is set.
type Identity struct {
	UserID    *uint
	SessionID *string
}

// ForUser returns the identity of a user-owned basket.
func ForUser(id uint) Identity {
	return Identity{UserID: &id}
}

// ForSession returns the identity of a session-owned basket.
func ForSession(id string) Identity {
	id = strings.TrimSpace(id)
	return Identity{SessionID: &id}
}

// Validate checks that exactly one owner is present and non-empty.
func (i Identity) Validate() error {
	switch {
	case i.UserID != nil && i.SessionID != nil:
		return pkgerrors.New(pkgerrors.CodeValidation, "basket identity must be either a user or a session").
			WithDetails(map[string]string{"user_id": "excluded with session_id"})
	case i.UserID != nil:
		if *i.UserID == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid basket identity").
				WithDetails(map[string]string{"user_id": "must be greater than 0"})
		}
	case i.SessionID != nil:
		if *i.SessionID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid basket identity").
				WithDetails(map[string]string{"session_id": "is required"})
		}
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "basket identity is required").
			WithDetails(map[string]string{"user_id": "required without session_id"})
	}
	return nil
}

// IsUser reports whether the basket belongs to a registered user.
func (i Identity) IsUser() bool {
	return i.UserID != nil
}

// LogField returns the structured log key and value naming the owner.
func (i Identity) LogField() (string, string) {
	if i.UserID != nil {
		return "user_id", strconv.FormatUint(uint64(*i.UserID), 10)
	}
	if i.SessionID != nil {
		return "session_id", *i.SessionID
	}
	return "", ""
}
