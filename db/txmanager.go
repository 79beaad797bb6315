package db

import (
	"context"
	"database/sql"

	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
)

// DB оборачивает *sql.DB так, чтобы репозитории выполняли запросы
// внутри транзакции, открытой сервисным слоем через TxManager.
// Conn возвращает транзакцию из контекста, либо сам пул соединений.
type DB struct {
	db     *sql.DB
	getter *trmsql.CtxGetter
}

func New(conn *sql.DB) *DB {
	return &DB{
		db:     conn,
		getter: trmsql.DefaultCtxGetter,
	}
}

func (d *DB) Conn(ctx context.Context) trmsql.Tr {
	return d.getter.DefaultTrOrDB(ctx, d.db)
}

// TxManager — контракт для сервисов: вся последовательность
// проверка-затем-изменение выполняется внутри одного Do.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type TransactionManager struct {
	manager *manager.Manager
}

func NewTransactionManager(conn *sql.DB) (*TransactionManager, error) {
	trManager, err := manager.New(trmsql.NewDefaultFactory(conn))
	if err != nil {
		return nil, err
	}
	return &TransactionManager{manager: trManager}, nil
}

func (tm *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return tm.manager.Do(ctx, fn)
}
