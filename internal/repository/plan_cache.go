package repository

import (
	"sync"

	"eduplan/internal/models"
)

// PlanCache keeps the last successful read of each tab in memory.
type PlanCache struct {
	mu    sync.RWMutex
	cache map[string]models.PlanSet // cacheKey(sheet, tab) -> last read
}

func NewPlanCache() *PlanCache {
	return &PlanCache{
		cache: make(map[string]models.PlanSet),
	}
}

func (c *PlanCache) Get(sheetID, tabName string) (models.PlanSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	set, found := c.cache[cacheKey(sheetID, tabName)]
	return set, found
}

func (c *PlanCache) Set(set models.PlanSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[cacheKey(set.SheetID, set.TabName)] = set
}

func (c *PlanCache) Delete(sheetID, tabName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, cacheKey(sheetID, tabName))
}

func (c *PlanCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]models.PlanSet)
}

// Size returns the number of cached tabs
func (c *PlanCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func cacheKey(sheetID, tabName string) string {
	return sheetID + "\x00" + tabName
}
