package service

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxRunner выполняет функцию в рамках одной транзакции БД.
// Боевая реализация — repository.TxRunner поверх pgxpool.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}
