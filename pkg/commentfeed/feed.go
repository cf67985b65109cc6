package commentfeed

import (
	"errors"
	"sync"
)

var (
	ErrFeedClosed  = errors.New("feed is closed")
	ErrLoadRunning = errors.New("a page load is already in flight")
	ErrNoMorePages = errors.New("no more pages")
)

// Feed binds the cache to its REST and realtime collaborators for one anime's
// comment section. All cache access goes through the feed's mutex, which
// stands in for the UI thread: every merge is applied atomically and "last
// applied wins".
//
// Lifecycle per mount: NewFeed -> Open (join + fetch page 1) -> mutations and
// events flow -> Close (leave exactly once). Results of fetches still in
// flight when Close runs are discarded via a generation counter.
type Feed struct {
	mu         sync.Mutex
	api        API
	channel    ChannelClient
	cache      Cache
	animeID    int64
	pageSize   int
	opened     bool
	generation int

	// OnChange, when set, is called after every cache mutation (REST or
	// broadcast) with the feed lock held. Keep it cheap.
	OnChange func()
}

// NewFeed wires the collaborators; the channel client is injected so tests
// can substitute a fake.
func NewFeed(api API, channel ChannelClient, pageSize int) *Feed {
	if pageSize < 1 {
		pageSize = 10
	}
	return &Feed{
		api:      api,
		channel:  channel,
		pageSize: pageSize,
	}
}

// Open joins the anime's broadcast room, fetches page 1 and starts merging
// events. Joining before fetching means an event can arrive for a comment the
// fetch also returns; the id-keyed merge makes that harmless.
func (f *Feed) Open(animeID int64) error {
	f.mu.Lock()
	if f.opened {
		f.mu.Unlock()
		return errors.New("feed already open")
	}
	f.opened = true
	f.animeID = animeID
	f.generation++
	gen := f.generation
	f.mu.Unlock()

	if err := f.channel.Join(animeID); err != nil {
		f.mu.Lock()
		f.opened = false
		f.mu.Unlock()
		return err
	}

	go f.eventLoop(gen)

	page, err := f.api.ListComments(animeID, 1, f.pageSize)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.generation != gen || !f.opened {
		// closed while the fetch was in flight; drop the stale result
		return ErrFeedClosed
	}
	if err != nil {
		return err
	}
	f.cache.ResetPage(page)
	f.notifyLocked()
	return nil
}

// Close leaves the room. Every successful Open has exactly one corresponding
// leave, even if Close races an in-flight fetch; extra Closes are no-ops.
func (f *Feed) Close() error {
	f.mu.Lock()
	if !f.opened {
		f.mu.Unlock()
		return nil
	}
	f.opened = false
	f.generation++
	animeID := f.animeID
	f.mu.Unlock()

	return f.channel.Leave(animeID)
}

// LoadMore fetches the next older page. Concurrent triggers are serialized:
// while one fetch is in flight further calls fail fast with ErrLoadRunning so
// the caller can re-enable its trigger.
func (f *Feed) LoadMore() error {
	f.mu.Lock()
	if !f.opened {
		f.mu.Unlock()
		return ErrFeedClosed
	}
	if !f.cache.HasMore() {
		f.mu.Unlock()
		return ErrNoMorePages
	}
	if !f.cache.BeginLoad() {
		f.mu.Unlock()
		return ErrLoadRunning
	}
	gen := f.generation
	animeID := f.animeID
	next := f.cache.CurrentPage() + 1
	f.mu.Unlock()

	page, err := f.api.ListComments(animeID, next, f.pageSize)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.generation != gen {
		// feed was closed (and possibly reopened) mid-fetch; the loading
		// flag belongs to the old generation, nothing to apply
		return ErrFeedClosed
	}
	f.cache.EndLoad()
	if err != nil {
		return err
	}
	f.cache.AppendPage(page)
	f.notifyLocked()
	return nil
}

// Post submits a new comment. On success the REST response is applied
// directly so the submitter sees it immediately; everyone else gets the
// broadcast, and the dedupe-by-id insert absorbs our own echo.
func (f *Feed) Post(text string) (*Comment, error) {
	f.mu.Lock()
	if !f.opened {
		f.mu.Unlock()
		return nil, ErrFeedClosed
	}
	animeID := f.animeID
	gen := f.generation
	f.mu.Unlock()

	cm, err := f.api.CreateComment(animeID, text)
	if err != nil {
		// cache untouched; the caller keeps the draft for retry
		return nil, err
	}

	f.applyOwn(gen, Event{Kind: EventCreated, Comment: cm})
	return cm, nil
}

// Edit submits a text change to the requester's own comment
func (f *Feed) Edit(commentID, text string) (*Comment, error) {
	cm, err := f.api.UpdateComment(commentID, text)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	gen := f.generation
	f.mu.Unlock()
	f.applyOwn(gen, Event{Kind: EventUpdated, Comment: cm})
	return cm, nil
}

// Delete removes the requester's own comment
func (f *Feed) Delete(commentID string) error {
	if err := f.api.DeleteComment(commentID); err != nil {
		return err
	}

	f.mu.Lock()
	gen := f.generation
	f.mu.Unlock()
	f.applyOwn(gen, Event{Kind: EventDeleted, CommentID: commentID})
	return nil
}

// ToggleLike flips the requester's like on a comment
func (f *Feed) ToggleLike(commentID string) (*Comment, error) {
	cm, err := f.api.ToggleLike(commentID)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	gen := f.generation
	f.mu.Unlock()
	f.applyOwn(gen, Event{Kind: EventUpdated, Comment: cm})
	return cm, nil
}

// Comments returns the current cache contents, newest first
func (f *Feed) Comments() []Comment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cache.Comments()
}

// HasMore reports whether older pages remain
func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cache.HasMore()
}

// Len returns the number of cached comments
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cache.Len()
}

// eventLoop merges broadcast events until the channel closes or the feed
// moves to a new generation
func (f *Feed) eventLoop(gen int) {
	for ev := range f.channel.Events() {
		f.mu.Lock()
		if f.generation != gen || !f.opened {
			f.mu.Unlock()
			return
		}
		f.cache.Apply(ev)
		f.notifyLocked()
		f.mu.Unlock()
	}
}

// applyOwn merges the result of our own REST call, unless the feed was
// closed while the request was in flight
func (f *Feed) applyOwn(gen int, ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.generation != gen || !f.opened {
		return
	}
	f.cache.Apply(ev)
	f.notifyLocked()
}

func (f *Feed) notifyLocked() {
	if f.OnChange != nil {
		f.OnChange()
	}
}
