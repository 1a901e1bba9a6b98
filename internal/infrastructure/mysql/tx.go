package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	apperrors "comanda/internal/errors"
)

type txKey struct{}

// Executor is what repositories run statements against: the transaction
// bound to ctx when there is one, the pool otherwise.
type Executor interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func Ext(ctx context.Context, db *sqlx.DB) Executor {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

// InTx reports whether ctx carries a transaction.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*sqlx.Tx)
	return ok
}

// Transact runs fn inside a REPEATABLE READ transaction carried by the
// context. Nested calls join the outer transaction. Errors outside the
// domain taxonomy come back as StoreError; deadlocks and lock wait timeouts
// come back as StaleStateError so the caller can refetch and retry.
func Transact(ctx context.Context, db *sqlx.DB, fn func(ctx context.Context) error) (err error) {
	if InTx(ctx) {
		return fn(ctx)
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return apperrors.NewStoreError("failed to begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			err = classify(err)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func classify(err error) error {
	if IsDeadlockError(err) {
		return apperrors.NewStaleStateError("concurrent update detected, refetch and retry")
	}
	if apperrors.IsDomainError(err) {
		return err
	}
	return apperrors.NewStoreError("store unavailable", err)
}

// IsDeadlockError matches InnoDB deadlock (1213) and lock wait timeout (1205).
func IsDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}

// TxManager binds Transact and the table lock to one pool so services can
// depend on an interface.
type TxManager struct {
	db *sqlx.DB
}

func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	return Transact(ctx, m.db, fn)
}

func (m *TxManager) LockTables(ctx context.Context, tables ...uint) error {
	return LockTables(ctx, Ext(ctx, m.db), tables...)
}

func (m *TxManager) LockAllTables(ctx context.Context) error {
	return LockAllTables(ctx, Ext(ctx, m.db))
}
