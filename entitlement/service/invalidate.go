package service

import (
	"context"
	"encoding/json"

	"cloud.google.com/go/pubsub"
)

const cacheInvalidationTopic = "entitlement-cache-invalidation"

//go:generate mockery --name CacheInvalidator --output ./mocks

// CacheInvalidator tells downstream caches that a tenant's entitlement state
// changed and must be re-read.
type CacheInvalidator interface {
	InvalidateTenant(ctx context.Context, tenantID string, rev int64) error
}

type cacheInvalidationMessage struct {
	TenantID string `json:"tenantId"`
	Rev      int64  `json:"rev"`
}

// PubsubCacheInvalidator broadcasts invalidations on a pubsub topic consumed
// by token issuers and edge caches.
type PubsubCacheInvalidator struct {
	pubsubFun func(ctx context.Context) *pubsub.Client
}

func NewPubsubCacheInvalidator(fun func(ctx context.Context) *pubsub.Client) *PubsubCacheInvalidator {
	return &PubsubCacheInvalidator{
		pubsubFun: fun,
	}
}

func (p *PubsubCacheInvalidator) InvalidateTenant(ctx context.Context, tenantID string, rev int64) error {
	msg, err := json.Marshal(cacheInvalidationMessage{
		TenantID: tenantID,
		Rev:      rev,
	})
	if err != nil {
		return err
	}

	res := p.pubsubFun(ctx).Topic(cacheInvalidationTopic).Publish(ctx, &pubsub.Message{
		Data: msg,
		Attributes: map[string]string{
			"tenantId": tenantID,
		},
	})

	if _, err := res.Get(ctx); err != nil {
		return err
	}

	return nil
}
