package session

import "sort"

// Cache holds the materialized message list for one chat session:
// deduplicated by id, sorted ascending by created-at with an id
// tie-break. It is not safe for concurrent use; the owning Session
// serializes access.
type Cache struct {
	seen map[string]struct{}
	list []Message
}

func NewCache() *Cache {
	return &Cache{seen: make(map[string]struct{})}
}

func (c *Cache) Len() int {
	return len(c.list)
}

// Messages returns a copy of the materialized list, oldest first.
func (c *Cache) Messages() []Message {
	out := make([]Message, len(c.list))
	copy(out, c.list)
	return out
}

// Oldest returns the first message in order, if any.
func (c *Cache) Oldest() (Message, bool) {
	if len(c.list) == 0 {
		return Message{}, false
	}
	return c.list[0], true
}

// Replace discards the current contents and installs msgs wholesale.
// Used for the initial load and for refresh.
func (c *Cache) Replace(msgs []Message) {
	c.seen = make(map[string]struct{}, len(msgs))
	c.list = c.list[:0]
	for _, m := range msgs {
		if _, ok := c.seen[m.ID]; ok {
			continue
		}
		c.seen[m.ID] = struct{}{}
		c.list = append(c.list, m)
	}
	c.sort()
}

// ApplyLive merges a live snapshot. An empty cache is replaced
// wholesale and reports nothing new (the first snapshot is history,
// not news). Otherwise only ids not already present are appended;
// already-cached messages are left untouched so a narrow live window
// never erases paginated history. Returns the newly observed
// messages.
func (c *Cache) ApplyLive(snapshot []Message) []Message {
	if len(c.list) == 0 {
		c.Replace(snapshot)
		return nil
	}

	var fresh []Message
	for _, m := range snapshot {
		if _, ok := c.seen[m.ID]; ok {
			continue
		}
		c.seen[m.ID] = struct{}{}
		c.list = append(c.list, m)
		fresh = append(fresh, m)
	}
	if len(fresh) > 0 {
		c.sort()
	}
	return fresh
}

// ApplyOlder prepends a paginated page. Ids already present are
// dropped, which covers a message that was both paginated and pushed
// live in the same window.
func (c *Cache) ApplyOlder(page []Message) {
	added := false
	for _, m := range page {
		if _, ok := c.seen[m.ID]; ok {
			continue
		}
		c.seen[m.ID] = struct{}{}
		c.list = append(c.list, m)
		added = true
	}
	if added {
		c.sort()
	}
}

func (c *Cache) sort() {
	sort.Slice(c.list, func(i, j int) bool {
		a, b := c.list[i], c.list[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
