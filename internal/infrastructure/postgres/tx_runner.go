package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

// CarritoTxRunner ejecuta una función con un CarritoRepository atado a una
// transacción. Si fn devuelve error se hace rollback; si no, commit.
type CarritoTxRunner struct {
	pool *pgxpool.Pool
}

// NewCarritoTxRunner construye el runner transaccional para carritos.
func NewCarritoTxRunner(pool *pgxpool.Pool) *CarritoTxRunner {
	return &CarritoTxRunner{pool: pool}
}

// Run abre la transacción, ejecuta fn con un repositorio atado a ella y
// confirma o revierte según el resultado.
func (t *CarritoTxRunner) Run(ctx context.Context, fn func(repo repository.CarritoRepository) error) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewCarritoRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
