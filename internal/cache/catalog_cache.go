package cache

import (
	"time"

	petdomain "github.com/moimlab/moim/internal/pet/domain"
)

const defaultCatalogTTL = 10 * time.Minute

// CatalogCache keeps the shop item catalog hot. The catalog only
// changes on reseed, so a coarse TTL is enough.
type CatalogCache interface {
	GetItems() ([]petdomain.PetItem, bool)
	SetItems(items []petdomain.PetItem)
}

type catalogCache struct {
	items Cache[string, []petdomain.PetItem]
	ttl   time.Duration
}

func NewCatalogCache() CatalogCache {
	return &catalogCache{
		items: NewTTLCache[string, []petdomain.PetItem](),
		ttl:   defaultCatalogTTL,
	}
}

func (c *catalogCache) GetItems() ([]petdomain.PetItem, bool) {
	return c.items.Get("catalog")
}

func (c *catalogCache) SetItems(items []petdomain.PetItem) {
	c.items.Set("catalog", items, c.ttl)
}
