package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/njprem/user_admin_backend/internal/repository/ports"
)

type Transactor struct {
	db *sqlx.DB
}

func NewTransactor(db *sqlx.DB) *Transactor {
	return &Transactor{db: db}
}

// RunInTx commits when fn succeeds and rolls back on error or panic. Panics are
// re-raised after the rollback.
func (t *Transactor) RunInTx(ctx context.Context, fn func(ctx context.Context, repos ports.TxRepositories) error) (err error) {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, ports.TxRepositories{
		Users:    NewUserRepo(tx),
		Roles:    NewRoleRepo(tx),
		Sessions: NewSessionRepo(tx),
	})
	return err
}

var _ ports.Transactor = (*Transactor)(nil)
