package chat

import "sync"

// memberCache is the read-mostly side cache of conversation members used to
// enrich incoming messages with sender display info. It is replaced
// wholesale on refresh, never mutated incrementally, and marked stale when a
// system message signals a membership change.
type memberCache struct {
	mu      sync.RWMutex
	byID    map[string]Sender
	stale   bool
	fetched bool
}

func newMemberCache() *memberCache {
	return &memberCache{byID: make(map[string]Sender)}
}

// replace swaps in a freshly fetched member list
func (mc *memberCache) replace(members []Sender) {
	byID := make(map[string]Sender, len(members))
	for _, m := range members {
		byID[m.UserID] = m
	}

	mc.mu.Lock()
	mc.byID = byID
	mc.stale = false
	mc.fetched = true
	mc.mu.Unlock()
}

// markStale flags the list for refetch
func (mc *memberCache) markStale() {
	mc.mu.Lock()
	mc.stale = true
	mc.mu.Unlock()
}

// needsRefresh reports whether the list was never fetched or has been
// invalidated.
func (mc *memberCache) needsRefresh() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.stale || !mc.fetched
}

// joinSender attaches sender display info to a message when the member list
// has it and the message doesn't; otherwise returns the message unchanged.
func (mc *memberCache) joinSender(msg Message) Message {
	if msg.SenderID == "" || msg.Sender != nil {
		return msg
	}

	mc.mu.RLock()
	sender, ok := mc.byID[msg.SenderID]
	mc.mu.RUnlock()
	if !ok {
		return msg
	}
	msg.Sender = &sender
	return msg
}
