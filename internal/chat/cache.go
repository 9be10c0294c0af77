package chat

// Page holds one contiguous slice of a conversation's history. Messages run
// oldest to newest within the page. NextCursor is the id of the oldest
// message in the page and requests the next older page; empty means no older
// page exists.
type Page struct {
	Messages   []Message
	NextCursor string
}

// Cache is the paginated message history for one conversation.
//
// Pages are kept in fetch order: page 0 is the page fetched first and always
// holds the newest messages, because pagination walks backward from "now".
// Later indexes hold progressively older history. This is a load-bearing
// invariant: Append targets page 0, AppendOlderPage grows the tail, and
// Timeline flattens pages last-to-first to produce the oldest-to-newest view.
//
// All operations are pure: they return a fresh top-level *Cache on change so
// consumers can detect updates by pointer comparison, and return the input
// unchanged on a no-op.
type Cache struct {
	Pages []Page
}

// NewCache creates a cache from the first (newest) fetched page
func NewCache(first Page) *Cache {
	return &Cache{Pages: []Page{first}}
}

// Timeline flattens the cache into the full oldest-to-newest sequence
func (c *Cache) Timeline() []Message {
	if c == nil {
		return nil
	}
	var n int
	for _, p := range c.Pages {
		n += len(p.Messages)
	}
	out := make([]Message, 0, n)
	for i := len(c.Pages) - 1; i >= 0; i-- {
		out = append(out, c.Pages[i].Messages...)
	}
	return out
}

// NextCursor returns the cursor for the next older page, empty when the
// oldest fetched page reported no more history.
func (c *Cache) NextCursor() string {
	if c == nil || len(c.Pages) == 0 {
		return ""
	}
	return c.Pages[len(c.Pages)-1].NextCursor
}

// HasOlder reports whether another older page can be fetched
func (c *Cache) HasOlder() bool {
	return c.NextCursor() != ""
}

// Append adds an incoming message to the newest page. A nil cache becomes a
// single-page cache holding only the message. Messages that carry a server id
// already present anywhere in the cache are dropped; dedup is by confirmed id
// only, never by content.
func Append(c *Cache, msg Message) *Cache {
	if c == nil || len(c.Pages) == 0 {
		return NewCache(Page{Messages: []Message{msg}})
	}

	if msg.ID != "" {
		for _, p := range c.Pages {
			for _, m := range p.Messages {
				if m.ID == msg.ID {
					return c
				}
			}
		}
	}

	pages := clonePages(c.Pages)
	first := pages[0]
	msgs := make([]Message, len(first.Messages), len(first.Messages)+1)
	copy(msgs, first.Messages)
	pages[0].Messages = append(msgs, msg)
	return &Cache{Pages: pages}
}

// AppendOlderPage adds an older history page behind the existing ones,
// keeping pages in fetch order.
func AppendOlderPage(c *Cache, page Page) *Cache {
	if c == nil || len(c.Pages) == 0 {
		return NewCache(page)
	}
	pages := make([]Page, len(c.Pages), len(c.Pages)+1)
	copy(pages, c.Pages)
	return &Cache{Pages: append(pages, page)}
}

// ReplacePending swaps the provisional message identified by tempID for its
// server-confirmed counterpart, marked sent. No-op when tempID is absent:
// the provisional record may have already timed out and been removed, so
// callers must not assume the match succeeds.
func ReplacePending(c *Cache, tempID string, confirmed Message) *Cache {
	confirmed.Status = StatusSent
	confirmed.TempID = ""
	return mapPending(c, tempID, func(Message) Message { return confirmed })
}

// SetStatus overwrites the status of the pending message identified by
// tempID; no-op when absent.
func SetStatus(c *Cache, tempID string, status MessageStatus) *Cache {
	return mapPending(c, tempID, func(m Message) Message {
		m.Status = status
		return m
	})
}

// RemovePending filters the message identified by tempID out of whichever
// page holds it; no-op when absent.
func RemovePending(c *Cache, tempID string) *Cache {
	if c == nil {
		return c
	}
	pi, mi := findPending(c, tempID)
	if pi < 0 {
		return c
	}

	pages := clonePages(c.Pages)
	old := pages[pi].Messages
	msgs := make([]Message, 0, len(old)-1)
	msgs = append(msgs, old[:mi]...)
	msgs = append(msgs, old[mi+1:]...)
	pages[pi].Messages = msgs
	return &Cache{Pages: pages}
}

// FindPendingByContent scans for a still-sending message from senderID with
// exactly this content and returns its tempID. This is how a server-echoed
// new-message event is matched back to the optimistic send that produced it;
// the server does not echo the client's temp id. When a user sends identical
// content twice before either confirms, the first match wins, an accepted
// ambiguity.
func FindPendingByContent(c *Cache, senderID, content string) (string, bool) {
	if c == nil {
		return "", false
	}
	for _, p := range c.Pages {
		for _, m := range p.Messages {
			if m.Status == StatusSending && m.SenderID == senderID && m.Content == content && m.TempID != "" {
				return m.TempID, true
			}
		}
	}
	return "", false
}

func findPending(c *Cache, tempID string) (pageIdx, msgIdx int) {
	for pi, p := range c.Pages {
		for mi, m := range p.Messages {
			if m.TempID == tempID {
				return pi, mi
			}
		}
	}
	return -1, -1
}

func mapPending(c *Cache, tempID string, fn func(Message) Message) *Cache {
	if c == nil {
		return c
	}
	pi, mi := findPending(c, tempID)
	if pi < 0 {
		return c
	}

	pages := clonePages(c.Pages)
	msgs := make([]Message, len(pages[pi].Messages))
	copy(msgs, pages[pi].Messages)
	msgs[mi] = fn(msgs[mi])
	pages[pi].Messages = msgs
	return &Cache{Pages: pages}
}

func clonePages(pages []Page) []Page {
	out := make([]Page, len(pages))
	copy(out, pages)
	return out
}
