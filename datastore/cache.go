package datastore

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/timotree3/holochain/common/types"
)

// OpCache holds recently read or written operations, so that serving the
// same operation to several peers hits the database once.
type OpCache struct {
	*lru.Cache[types.OpHash, *types.Op]
}

// NewOpCache creates a new cache for operations.
func NewOpCache(size int) OpCache {
	cache, err := lru.New[types.OpHash, *types.Op](size)
	if err != nil {
		panic("BUG: could not initialize cache: " + err.Error())
	}
	return OpCache{Cache: cache}
}
