package shared

import (
	"context"

	"shuttlecourt/internal/infra/postgres"
)

// TxManager runs a function inside one database transaction. Commands use it
// for every check-and-write that must be atomic (slot insert, settlement,
// voucher consumption).
type TxManager interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx postgres.DBTX) error) error
}
