package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
)

const (
	codeWriteConflict = 112
	labelTransientTxn = "TransientTransactionError"
)

var _ ports.UnitOfWork = (*TxRunner)(nil)

// TxRunner runs callbacks inside a multi-document transaction. It never
// retries: a transient error is returned to the caller marked with
// domain.ErrTxConflict.
type TxRunner struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewTxRunner(client *mongo.Client, db *mongo.Database) *TxRunner {
	return &TxRunner{client: client, db: db}
}

// Do starts a session and a transaction, runs fn with repositories bound to
// it, and commits or aborts. The session is always ended.
func (r *TxRunner) Do(ctx context.Context, fn func(ctx context.Context, tx ports.TxRepositories) error) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(context.WithoutCancel(ctx))

	txOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if err := sess.StartTransaction(txOpts); err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}

	sc := mongo.NewSessionContext(ctx, sess)
	if err := fn(sc, txRepositories{db: r.db}); err != nil {
		if abortErr := sess.AbortTransaction(context.WithoutCancel(ctx)); abortErr != nil {
			return markConflict(fmt.Errorf("%w (abort: %v)", err, abortErr))
		}
		return markConflict(err)
	}

	if err := sess.CommitTransaction(sc); err != nil {
		_ = sess.AbortTransaction(context.WithoutCancel(ctx))
		return markConflict(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// markConflict tags write conflicts and transient transaction errors with
// domain.ErrTxConflict and leaves every other error untouched.
func markConflict(err error) error {
	if !isTransient(err) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrTxConflict, err)
}

func isTransient(err error) bool {
	var se mongo.ServerError
	if !errors.As(err, &se) {
		return false
	}
	return se.HasErrorLabel(labelTransientTxn) || se.HasErrorCode(codeWriteConflict)
}

type txRepositories struct {
	db *mongo.Database
}

func (t txRepositories) Products() ports.ProductRepository { return NewProductRepository(t.db) }

func (t txRepositories) Sales() ports.SaleRepository { return NewSaleRepository(t.db) }

func (t txRepositories) Adjustments() ports.StockAdjustmentRepository {
	return NewStockAdjustmentRepository(t.db)
}

func (t txRepositories) Users() ports.UserRepository { return NewUserRepository(t.db) }
