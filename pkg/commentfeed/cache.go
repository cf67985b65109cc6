package commentfeed

// Cache holds the ordered comment list for one anime, newest first. It is a
// plain data structure with no locking; the Feed serializes access the way a
// UI event loop would.
type Cache struct {
	comments    []Comment
	currentPage int
	totalPages  int
	totalItems  int64
	loading     bool
}

// Comments returns a copy of the cached list, newest first
func (c *Cache) Comments() []Comment {
	out := make([]Comment, len(c.comments))
	copy(out, c.comments)
	return out
}

// Len returns the number of cached comments
func (c *Cache) Len() int {
	return len(c.comments)
}

// CurrentPage returns the last page applied to the cache
func (c *Cache) CurrentPage() int {
	return c.currentPage
}

// TotalItems returns the server-side comment total from the last fetch
func (c *Cache) TotalItems() int64 {
	return c.totalItems
}

// HasMore reports whether older pages remain to be fetched
func (c *Cache) HasMore() bool {
	return c.currentPage < c.totalPages
}

// BeginLoad marks a page fetch in flight. It returns false if one is already
// running, which serializes successive load-more triggers.
func (c *Cache) BeginLoad() bool {
	if c.loading {
		return false
	}
	c.loading = true
	return true
}

// EndLoad clears the in-flight flag
func (c *Cache) EndLoad() {
	c.loading = false
}

// ResetPage replaces the cache wholesale with page 1 of a fresh fetch. Any
// in-flight flag from a previous lifecycle is cleared: a fetch abandoned by a
// close-mid-load must not block load-more after a reopen.
func (c *Cache) ResetPage(page *Page) {
	c.comments = append([]Comment(nil), page.Comments...)
	c.currentPage = page.Pagination.Current
	c.totalPages = page.Pagination.Total
	c.totalItems = page.Pagination.TotalItems
	c.loading = false
}

// AppendPage appends an older page to the end of the cache, preserving
// descending-time order. Comments already present (a broadcast raced the
// fetch) are skipped by id.
func (c *Cache) AppendPage(page *Page) {
	for _, cm := range page.Comments {
		if c.indexOf(cm.ID) >= 0 {
			continue
		}
		c.comments = append(c.comments, cm)
	}
	c.currentPage = page.Pagination.Current
	c.totalPages = page.Pagination.Total
	c.totalItems = page.Pagination.TotalItems
}

// Insert prepends a new comment. Inserts are idempotent per id: if the
// comment is already cached (the creator receives its own broadcast after
// applying the REST response) the event is dropped.
func (c *Cache) Insert(cm Comment) bool {
	if c.indexOf(cm.ID) >= 0 {
		return false
	}
	c.comments = append([]Comment{cm}, c.comments...)
	c.totalItems++
	return true
}

// Replace overwrites the cached entry with the same id in place, keeping its
// list position. Events for comments not yet loaded are dropped.
func (c *Cache) Replace(cm Comment) bool {
	i := c.indexOf(cm.ID)
	if i < 0 {
		return false
	}
	c.comments[i] = cm
	return true
}

// Remove deletes the entry with the given id; no-op when absent
func (c *Cache) Remove(id string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.comments = append(c.comments[:i], c.comments[i+1:]...)
	if c.totalItems > 0 {
		c.totalItems--
	}
	return true
}

// Apply merges one broadcast event into the cache. The merge is idempotent
// per id, so redelivery of the same event is safe.
func (c *Cache) Apply(ev Event) {
	switch ev.Kind {
	case EventCreated:
		if ev.Comment != nil {
			c.Insert(*ev.Comment)
		}
	case EventUpdated:
		if ev.Comment != nil {
			c.Replace(*ev.Comment)
		}
	case EventDeleted:
		c.Remove(ev.CommentID)
	}
}

func (c *Cache) indexOf(id string) int {
	for i := range c.comments {
		if c.comments[i].ID == id {
			return i
		}
	}
	return -1
}
