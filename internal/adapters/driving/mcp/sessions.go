package mcp

import (
	"container/list"
	"sync"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/logger"
)

// maxSessions bounds the named conversations held in memory.
const maxSessions = 64

type conversation struct {
	id      string
	session *domain.Session
}

// conversations keeps named chat sessions for MCP clients, evicting the least
// recently used one once capacity is reached.
type conversations struct {
	newSession func() *domain.Session
	capacity   int

	mu     sync.Mutex
	byID   map[string]*list.Element
	recent *list.List // front is most recently used
}

func newConversations(capacity int, newSession func() *domain.Session) *conversations {
	return &conversations{
		newSession: newSession,
		capacity:   capacity,
		byID:       make(map[string]*list.Element),
		recent:     list.New(),
	}
}

// get returns the session named id, creating it on first use. An empty id
// yields a fresh session that is not remembered.
func (c *conversations) get(id string) *domain.Session {
	if id == "" {
		return c.newSession()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.byID[id]; ok {
		c.recent.MoveToFront(el)
		return el.Value.(*conversation).session
	}

	for c.recent.Len() >= c.capacity {
		last := c.recent.Back()
		evicted := c.recent.Remove(last).(*conversation)
		delete(c.byID, evicted.id)
		logger.Debug("Dropped MCP conversation %s", evicted.id)
	}
	conv := &conversation{id: id, session: c.newSession()}
	c.byID[id] = c.recent.PushFront(conv)
	return conv.session
}

// forget drops the session named id and reports whether it was held.
func (c *conversations) forget(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.byID[id]
	if !ok {
		return false
	}
	c.recent.Remove(el)
	delete(c.byID, id)
	return true
}

func (c *conversations) has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.byID[id]
	return ok
}

func (c *conversations) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recent.Len()
}
