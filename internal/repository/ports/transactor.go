package ports

import "context"

// TxRepositories are bound to a single transaction.
type TxRepositories struct {
	Users    UserRepository
	Roles    RoleRepository
	Sessions SessionRepository
}

// Transactor runs fn inside one transaction: it commits when fn returns nil and
// rolls back every write made through the given repositories otherwise.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}
