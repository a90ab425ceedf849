package locate

import (
	"container/list"
	"sync"
	"time"
)

// 文档注释：进程内 LRU（geohash 为键）
// 背景：同一区域的访客 IP 解析到相近坐标，命中的县结果可复用，省去逐县包围盒过滤与射线判定。
// 约束：只缓存县判定结果，不缓存 IP → 坐标；命中值只是候选，须由调用方复核。
type lru struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[string]*list.Element
}

type entry struct {
	k   string
	v   string
	exp time.Time
}

func newLRU(capacity int, ttl time.Duration) *lru {
	return &lru{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[string]*list.Element)}
}

func (c *lru) get(k string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.dict[k]
	if !ok {
		return "", false
	}
	it := e.Value.(entry)
	if time.Now().After(it.exp) {
		c.lst.Remove(e)
		delete(c.dict, k)
		return "", false
	}
	c.lst.MoveToFront(e)
	return it.v, true
}

func (c *lru) set(k, v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it := entry{k: k, v: v, exp: time.Now().Add(c.ttl)}
	if e, ok := c.dict[k]; ok {
		e.Value = it
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(it)
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(entry).k)
		c.lst.Remove(back)
	}
}

func (c *lru) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}
