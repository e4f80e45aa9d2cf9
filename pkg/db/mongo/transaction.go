package mongo

import (
	"context"
	"fmt"
	"sync"

	apperrors "roomdesk/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// TransactionFunc receives a session context inside a transaction, or the
// caller's context when the deployment cannot run transactions.
type TransactionFunc func(ctx context.Context) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client

	helloOnce sync.Once
	supported bool
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
	}
}

// ExecuteTransaction runs fn in a multi-document transaction. Standalone
// servers have no transactions, so fn runs directly there.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	if !m.transactionsSupported(ctx) {
		return fn(ctx)
	}

	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	})

	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// transactionsSupported asks the server once whether it is a replica set
// member or a mongos router.
func (m *mongoTransactionManager) transactionsSupported(ctx context.Context) bool {
	m.helloOnce.Do(func() {
		var hello struct {
			SetName string `bson:"setName"`
			Msg     string `bson:"msg"`
		}
		err := m.client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello)
		m.supported = err == nil && (hello.SetName != "" || hello.Msg == "isdbgrid")
	})
	return m.supported
}
