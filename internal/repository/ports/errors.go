package ports

import "errors"

// ErrDuplicate is returned by non-SQL implementations when a write would break a
// uniqueness rule (email, activation token, reset token, role name).
var ErrDuplicate = errors.New("duplicate key")
