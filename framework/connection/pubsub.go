package connection

import (
	"context"
	"errors"

	"cloud.google.com/go/pubsub"

	"github.com/licensehq/entitlement-engine/common"
	"github.com/licensehq/entitlement-engine/logger"
)

var (
	ErrPubsubInitialization = errors.New("pubsub initialization error")
)

type PubsubClient struct {
	pubsub *pubsub.Client
}

func NewPubsubClient(ctx context.Context, log *logger.Logging) (*PubsubClient, error) {
	logger := log.Logger(ctx)

	ps, err := pubsub.NewClient(ctx, common.ProjectID)
	if err != nil {
		logger.Errorf("%s: %s", ErrPubsubInitialization, err)
		return nil, ErrPubsubInitialization
	}

	return &PubsubClient{
		ps,
	}, nil
}

// Pubsub returns a pubsub connection that was stored in context.
// it returns by default a pubsub connection, if there was not on context.
func (c *Connection) Pubsub(ctx context.Context) *pubsub.Client {
	if ps, ok := ctx.Value(CtxPubSubKey).(*pubsub.Client); ok {
		return ps
	}

	return c.pubsub
}
