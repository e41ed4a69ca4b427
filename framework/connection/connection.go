package connection

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"

	"github.com/licensehq/entitlement-engine/logger"
)

const (
	// CtxFirestoreKey is how firestore connections are stored/retrieved.
	CtxFirestoreKey = "app-firestore"

	// CtxPubSubKey is how cloud pubsub connections are stored/retrieved.
	CtxPubSubKey = "app-pubsub"
)

type Connection struct {
	*FirestoreClient
	*PubsubClient
}

// NewConnection initializes db connections necessary for api support.
func NewConnection(ctx context.Context, log *logger.Logging) (*Connection, error) {
	fs, err := NewFirestore(ctx, log)
	if err != nil {
		return nil, err
	}

	ps, err := NewPubsubClient(ctx, log)
	if err != nil {
		return nil, err
	}

	return &Connection{
		fs,
		ps,
	}, nil
}

// Firestore returns a firestore connection that was stored in context.
// it returns by default a firestore connection, if there was not on context.
func (c *Connection) Firestore(ctx context.Context) *firestore.Client {
	if fs, ok := ctx.Value(CtxFirestoreKey).(*firestore.Client); ok {
		return fs
	}

	return c.fs
}

// FirestoreWithContext stores under gin context, a firestore connection.
func (c *Connection) FirestoreWithContext(ctx *gin.Context) {
	ctx.Set(CtxFirestoreKey, c.fs)
}

type FirestoreFromContextFun = func(ctx context.Context) *firestore.Client
