package plan

import (
	"context"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"

	"github.com/hanpama/graphplan/internal/eventbus"
	"github.com/hanpama/graphplan/internal/events"
)

// Cache keeps compiled plans keyed by query text and operation name.
type Cache struct {
	plans *lru.Cache
}

func NewCache(size int) (*Cache, error) {
	plans, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache{plans: plans}, nil
}

// Key hashes the query text and operation name.
func Key(query, operationName string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(query)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(operationName)
	return d.Sum64()
}

// Get returns the cached plan for query.
func (c *Cache) Get(ctx context.Context, query, operationName string) (*Plan, bool) {
	key := Key(query, operationName)
	if v, ok := c.plans.Get(key); ok {
		eventbus.Publish(ctx, events.PlanCacheHit{Key: key, OperationName: operationName})
		return v.(*Plan), true
	}
	eventbus.Publish(ctx, events.PlanCacheMiss{Key: key, OperationName: operationName})
	return nil, false
}

// Add stores a plan. Plans that failed to compile are not cached.
func (c *Cache) Add(ctx context.Context, query, operationName string, p *Plan) {
	if p == nil || !p.IsSuccessful() {
		return
	}
	key := Key(query, operationName)
	c.plans.Add(key, p)
	eventbus.Publish(ctx, events.PlanCached{Key: key, OperationName: operationName})
}

// GetOrCreate returns the cached plan or builds and caches a new one.
func (c *Cache) GetOrCreate(ctx context.Context, query, operationName string, create func() *Plan) *Plan {
	if p, ok := c.Get(ctx, query, operationName); ok {
		return p
	}
	p := create()
	c.Add(ctx, query, operationName, p)
	return p
}

func (c *Cache) Len() int { return c.plans.Len() }
