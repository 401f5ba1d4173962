package postgres

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"math"

	"github.com/jmoiron/sqlx"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-dice/pkg/ledger"

	pgutil "github.com/code-payments/code-dice/pkg/database/postgres"
	q "github.com/code-payments/code-dice/pkg/database/query"
)

const (
	accountTableName = "dice__core_ledgeraccount"
)

type accountModel struct {
	Id         sql.NullInt64 `db:"id"`
	Address    string        `db:"address"`
	Owner      string        `db:"owner"`
	Lamports   int64         `db:"lamports"`
	Data       []byte        `db:"data"`
	Executable bool          `db:"executable"`
	Slot       int64         `db:"slot"`
}

func toAccountModel(obj *ledger.Account) (*accountModel, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}
	if obj.Lamports > math.MaxInt64 || obj.Slot > math.MaxInt64 {
		return nil, errors.New("value exceeds storage range")
	}

	data := obj.Data
	if data == nil {
		data = []byte{}
	}

	return &accountModel{
		Id:         sql.NullInt64{Int64: int64(obj.Id), Valid: obj.Id > 0},
		Address:    base58.Encode(obj.Address),
		Owner:      base58.Encode(obj.Owner),
		Lamports:   int64(obj.Lamports),
		Data:       data,
		Executable: obj.Executable,
		Slot:       int64(obj.Slot),
	}, nil
}

func fromAccountModel(obj *accountModel) (*ledger.Account, error) {
	address, err := base58.Decode(obj.Address)
	if err != nil {
		return nil, errors.Wrap(err, "invalid address")
	}
	owner, err := base58.Decode(obj.Owner)
	if err != nil {
		return nil, errors.Wrap(err, "invalid owner")
	}

	return &ledger.Account{
		Id:         uint64(obj.Id.Int64),
		Address:    address,
		Owner:      owner,
		Lamports:   uint64(obj.Lamports),
		Data:       obj.Data,
		Executable: obj.Executable,
		Slot:       uint64(obj.Slot),
	}, nil
}

func (m *accountModel) txSave(ctx context.Context, tx *sqlx.Tx) error {
	query := `INSERT INTO ` + accountTableName + `
		(address, owner, lamports, data, executable, slot)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (address)
		DO UPDATE
			SET owner = $2, lamports = $3, data = $4, executable = $5, slot = $6
			WHERE ` + accountTableName + `.address = $1
		RETURNING
			id, address, owner, lamports, data, executable, slot`

	return tx.QueryRowxContext(
		ctx,
		query,
		m.Address,
		m.Owner,
		m.Lamports,
		m.Data,
		m.Executable,
		m.Slot,
	).StructScan(m)
}

func txDelete(ctx context.Context, tx *sqlx.Tx, address ed25519.PublicKey) error {
	query := `DELETE FROM ` + accountTableName + ` WHERE address = $1`
	_, err := tx.ExecContext(ctx, query, base58.Encode(address))
	return err
}

func dbGet(ctx context.Context, db *sqlx.DB, address ed25519.PublicKey) (*accountModel, error) {
	res := &accountModel{}

	query := `SELECT
		id, address, owner, lamports, data, executable, slot
		FROM ` + accountTableName + `
		WHERE address = $1
		LIMIT 1`

	err := db.GetContext(ctx, res, query, base58.Encode(address))
	if err != nil {
		return nil, pgutil.CheckNoRows(err, ledger.ErrAccountNotFound)
	}
	return res, nil
}

func dbGetAllByOwner(ctx context.Context, db *sqlx.DB, owner ed25519.PublicKey, cursor q.Cursor, limit uint64, direction q.Ordering) ([]*accountModel, error) {
	res := []*accountModel{}

	query := `SELECT
		id, address, owner, lamports, data, executable, slot
		FROM ` + accountTableName + `
		WHERE (owner = $1)
	`

	opts := []interface{}{base58.Encode(owner)}
	query, opts = q.PaginateQuery(query, opts, cursor, limit, direction)

	err := db.SelectContext(ctx, &res, query, opts...)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, ledger.ErrAccountNotFound)
	}

	if len(res) == 0 {
		return nil, ledger.ErrAccountNotFound
	}

	return res, nil
}

func dbGetLatestSlot(ctx context.Context, db *sqlx.DB) (uint64, error) {
	var slot int64

	query := `SELECT COALESCE(MAX(slot), 0) FROM ` + accountTableName

	if err := db.GetContext(ctx, &slot, query); err != nil {
		return 0, err
	}
	return uint64(slot), nil
}
