package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nikmy/txnmgr/pkg/errors"
	"github.com/nikmy/txnmgr/pkg/logger"
	"github.com/nikmy/txnmgr/pkg/txn"
)

// runDemo drives a tiny transfer ledger through the manager so a fresh
// deployment can be smoke-checked end to end: schema setup, a transfer
// with a nested audit record, and a read-only balance check.
func runDemo(ctx context.Context, log logger.Logger, mgr *txn.Manager) error {
	log = log.With("demo")

	err := mgr.Transactional(ctx, txn.Options{Name: "demo schema"}, func(ctx context.Context) error {
		tx := txn.CurrentQuerier(ctx).(pgx.Tx)

		_, err := tx.Exec(ctx, `
			CREATE TABLE IF NOT EXISTS demo_wallets (
				id      bigint PRIMARY KEY,
				balance bigint NOT NULL CHECK (balance >= 0)
			)`)
		if err != nil {
			return errors.WrapFail(err, "create wallets table")
		}

		_, err = tx.Exec(ctx, `
			CREATE TABLE IF NOT EXISTS demo_audit (
				id     bigserial PRIMARY KEY,
				detail text NOT NULL,
				at     timestamptz NOT NULL DEFAULT now()
			)`)
		if err != nil {
			return errors.WrapFail(err, "create audit table")
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO demo_wallets (id, balance)
			VALUES (1, 1000), (2, 0)
			ON CONFLICT (id) DO NOTHING`)
		return errors.WrapFail(err, "seed wallets")
	})
	if err != nil {
		return err
	}

	opts := txn.Options{
		Name:      "demo transfer",
		Isolation: txn.ReadCommitted,
		Timeout:   5 * time.Second,
		Hooks: txn.Hooks{
			AfterCommit: func(context.Context) error {
				log.Infof("transfer committed")
				return nil
			},
		},
	}

	err = mgr.Transactional(ctx, opts, func(ctx context.Context) error {
		tx := txn.CurrentQuerier(ctx).(pgx.Tx)

		_, err := tx.Exec(ctx, `UPDATE demo_wallets SET balance = balance - 100 WHERE id = 1`)
		if err != nil {
			return errors.WrapFail(err, "debit wallet")
		}

		_, err = tx.Exec(ctx, `UPDATE demo_wallets SET balance = balance + 100 WHERE id = 2`)
		if err != nil {
			return errors.WrapFail(err, "credit wallet")
		}

		// audit lives in a savepoint scope: a broken audit insert must not
		// take the transfer down with it
		auditErr := mgr.Transactional(ctx, txn.Options{Propagation: txn.Nested}, func(ctx context.Context) error {
			tx := txn.CurrentQuerier(ctx).(pgx.Tx)
			_, err := tx.Exec(ctx, `INSERT INTO demo_audit (detail) VALUES ('transfer 1 -> 2, amount 100')`)
			return err
		})
		if auditErr != nil {
			log.Warn(errors.WrapFail(auditErr, "record audit entry"))
		}

		return nil
	})
	if err != nil {
		return err
	}

	balances, err := txn.Run(ctx, mgr, txn.Options{Name: "demo balances", ReadOnly: true}, func(ctx context.Context) (map[int64]int64, error) {
		tx := txn.CurrentQuerier(ctx).(pgx.Tx)

		rows, err := tx.Query(ctx, `SELECT id, balance FROM demo_wallets ORDER BY id`)
		if err != nil {
			return nil, errors.WrapFail(err, "query balances")
		}
		defer rows.Close()

		out := make(map[int64]int64)
		for rows.Next() {
			var id, balance int64
			if err := rows.Scan(&id, &balance); err != nil {
				return nil, errors.WrapFail(err, "scan balance")
			}
			out[id] = balance
		}
		return out, rows.Err()
	})
	if err != nil {
		return err
	}

	for id, balance := range balances {
		log.Infof("wallet %d balance %d", id, balance)
	}

	stats := mgr.Stats()
	log.Infof("transactions: total=%d ok=%d failed=%d avg=%s", stats.Total, stats.Succeeded, stats.Failed, stats.AvgDuration)

	return nil
}
