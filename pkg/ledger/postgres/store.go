package postgres

import (
	"context"
	"crypto/ed25519"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/code-dice/pkg/database/query"
	"github.com/code-payments/code-dice/pkg/ledger"
	"github.com/code-payments/code-dice/pkg/metrics"

	pgutil "github.com/code-payments/code-dice/pkg/database/postgres"
)

const (
	metricsStructName = "ledger.postgres.store"
)

type store struct {
	db *sqlx.DB
}

func New(db *sql.DB) ledger.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Get implements ledger.Store.Get
func (s *store) Get(ctx context.Context, address ed25519.PublicKey) (*ledger.Account, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Get")
	defer tracer.End()

	model, err := dbGet(ctx, s.db, address)
	if err != nil {
		return nil, err
	}
	return fromAccountModel(model)
}

// GetAllByOwner implements ledger.Store.GetAllByOwner
func (s *store) GetAllByOwner(ctx context.Context, owner ed25519.PublicKey, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*ledger.Account, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetAllByOwner")
	defer tracer.End()

	models, err := dbGetAllByOwner(ctx, s.db, owner, cursor, limit, direction)
	if err != nil {
		return nil, err
	}

	accounts := make([]*ledger.Account, len(models))
	for i, model := range models {
		accounts[i], err = fromAccountModel(model)
		if err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

// GetLatestSlot implements ledger.Store.GetLatestSlot
func (s *store) GetLatestSlot(ctx context.Context) (uint64, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetLatestSlot")
	defer tracer.End()

	slot, err := dbGetLatestSlot(ctx, s.db)
	if err != nil {
		tracer.OnError(err)
		return 0, err
	}
	return slot, nil
}

// Commit implements ledger.Store.Commit
func (s *store) Commit(ctx context.Context, updated []*ledger.Account, deleted []ed25519.PublicKey) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Commit")
	defer tracer.End()

	models := make([]*accountModel, len(updated))
	for i, account := range updated {
		model, err := toAccountModel(account)
		if err != nil {
			return err
		}
		models[i] = model
	}

	err := pgutil.ExecuteRetryable(func() error {
		return pgutil.ExecuteInTx(ctx, s.db, sql.LevelRepeatableRead, func(tx *sqlx.Tx) error {
			for _, address := range deleted {
				if err := txDelete(ctx, tx, address); err != nil {
					return err
				}
			}

			for _, model := range models {
				if err := model.txSave(ctx, tx); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		tracer.OnError(err)
		return err
	}

	for i, model := range models {
		updated[i].Id = uint64(model.Id.Int64)
	}
	return nil
}
