package commentfeed

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- FAKE CHANNEL ---

type fakeChannel struct {
	mu     sync.Mutex
	events chan Event
	joins  []int64
	leaves []int64
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{events: make(chan Event, 16)}
}

func (f *fakeChannel) Join(animeID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joins = append(f.joins, animeID)
	return nil
}

func (f *fakeChannel) Leave(animeID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaves = append(f.leaves, animeID)
	return nil
}

func (f *fakeChannel) Events() <-chan Event { return f.events }

func (f *fakeChannel) Close() error {
	close(f.events)
	return nil
}

func (f *fakeChannel) joinCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.joins)
}

func (f *fakeChannel) leaveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.leaves)
}

// --- FAKE API ---

type fakeAPI struct {
	mu        sync.Mutex
	pages     map[int]*Page
	listCalls int
	listGate  chan struct{} // when set, ListComments blocks until the gate closes
}

func (f *fakeAPI) ListComments(animeID int64, page, limit int) (*Page, error) {
	f.mu.Lock()
	f.listCalls++
	gate := f.listGate
	p := f.pages[page]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if p == nil {
		return &Page{Pagination: Pagination{Current: page, Total: len(f.pages), TotalItems: 0}}, nil
	}
	return p, nil
}

func (f *fakeAPI) CreateComment(animeID int64, text string) (*Comment, error) {
	return &Comment{ID: "own-1", AnimeID: animeID, Content: text, CreatedAt: time.Now()}, nil
}

func (f *fakeAPI) UpdateComment(commentID, text string) (*Comment, error) {
	return &Comment{ID: commentID, Content: text, UpdatedAt: time.Now()}, nil
}

func (f *fakeAPI) DeleteComment(commentID string) error { return nil }

func (f *fakeAPI) ToggleLike(commentID string) (*Comment, error) {
	return &Comment{ID: commentID, LikeCount: 1, LikedBy: []string{"user-1"}}, nil
}

func twoPageAPI() *fakeAPI {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	page1 := &Page{Pagination: Pagination{Current: 1, Total: 2, TotalItems: 15}}
	for i := 15; i >= 6; i-- {
		page1.Comments = append(page1.Comments, makeComment(idOf(i), base.Add(time.Duration(i)*time.Minute)))
	}
	page2 := &Page{Pagination: Pagination{Current: 2, Total: 2, TotalItems: 15}}
	for i := 5; i >= 1; i-- {
		page2.Comments = append(page2.Comments, makeComment(idOf(i), base.Add(time.Duration(i)*time.Minute)))
	}
	return &fakeAPI{pages: map[int]*Page{1: page1, 2: page2}}
}

func idOf(i int) string {
	return "c" + string(rune('0'+i/10)) + string(rune('0'+i%10))
}

// --- TESTS ---

func TestFeedOpenSeedsFromPageOne(t *testing.T) {
	api := twoPageAPI()
	ch := newFakeChannel()
	feed := NewFeed(api, ch, 10)

	require.NoError(t, feed.Open(12))
	defer feed.Close()

	comments := feed.Comments()
	require.Len(t, comments, 10)
	assert.Equal(t, idOf(15), comments[0].ID, "newest comment first")
	assert.Equal(t, idOf(6), comments[9].ID)
	assert.True(t, feed.HasMore())
	assert.Equal(t, []int64{12}, ch.joins)
}

func TestFeedRemoteCreateGrowsCacheAtFront(t *testing.T) {
	api := twoPageAPI()
	ch := newFakeChannel()
	feed := NewFeed(api, ch, 10)
	require.NoError(t, feed.Open(12))
	defer feed.Close()

	before := feed.Len()
	fresh := makeComment("c16", time.Now())
	ch.events <- Event{Kind: EventCreated, Comment: &fresh}

	assert.Eventually(t, func() bool {
		return feed.Len() == before+1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "c16", feed.Comments()[0].ID)
}

func TestFeedPostDedupesOwnEcho(t *testing.T) {
	api := twoPageAPI()
	ch := newFakeChannel()
	feed := NewFeed(api, ch, 10)
	require.NoError(t, feed.Open(12))
	defer feed.Close()

	cm, err := feed.Post("hello")
	require.NoError(t, err)
	assert.Equal(t, "own-1", cm.ID)
	assert.Equal(t, 11, feed.Len())
	assert.Equal(t, "own-1", feed.Comments()[0].ID, "own REST response applied immediately")

	// the server also broadcasts to the mutator; the echo must not double-insert
	ch.events <- Event{Kind: EventCreated, Comment: cm}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 11, feed.Len())
}

func TestFeedEditVisibleOnRESTSuccess(t *testing.T) {
	api := twoPageAPI()
	ch := newFakeChannel()
	feed := NewFeed(api, ch, 10)
	require.NoError(t, feed.Open(12))
	defer feed.Close()

	before := feed.Comments()
	target := before[3]

	_, err := feed.Edit(target.ID, "edited")
	require.NoError(t, err)

	after := feed.Comments()
	assert.Equal(t, "edited", after[3].Content, "no broadcast needed for the editor's own view")
	assert.Equal(t, target.ID, after[3].ID)
}

func TestFeedUpdateForUnknownCommentIsDropped(t *testing.T) {
	api := twoPageAPI()
	ch := newFakeChannel()
	feed := NewFeed(api, ch, 10)
	require.NoError(t, feed.Open(12))
	defer feed.Close()

	unknown := makeComment("c03", time.Now()) // lives on the unloaded page 2
	ch.events <- Event{Kind: EventUpdated, Comment: &unknown}
	ch.events <- Event{Kind: EventDeleted, CommentID: "also-unknown"}
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 10, feed.Len(), "events for unloaded comments are no-ops")
}

func TestFeedLoadMoreAppendsOlderPage(t *testing.T) {
	api := twoPageAPI()
	ch := newFakeChannel()
	feed := NewFeed(api, ch, 10)
	require.NoError(t, feed.Open(12))
	defer feed.Close()

	require.NoError(t, feed.LoadMore())
	assert.Equal(t, 15, feed.Len())
	assert.False(t, feed.HasMore())
	assert.Equal(t, idOf(1), feed.Comments()[14].ID, "oldest comment last")

	assert.ErrorIs(t, feed.LoadMore(), ErrNoMorePages)
}

func TestFeedLoadMoreSerializesConcurrentTriggers(t *testing.T) {
	api := twoPageAPI()
	ch := newFakeChannel()
	feed := NewFeed(api, ch, 10)
	require.NoError(t, feed.Open(12))
	defer feed.Close()

	gate := make(chan struct{})
	api.mu.Lock()
	api.listGate = gate
	api.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- feed.LoadMore() }()

	// wait until the slow fetch is actually in flight
	assert.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return api.listCalls == 2
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, feed.LoadMore(), ErrLoadRunning, "second near-bottom trigger must be refused")

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, 15, feed.Len())
}

func TestFeedCloseLeavesExactlyOnce(t *testing.T) {
	api := twoPageAPI()
	ch := newFakeChannel()
	feed := NewFeed(api, ch, 10)
	require.NoError(t, feed.Open(12))

	require.NoError(t, feed.Close())
	require.NoError(t, feed.Close()) // extra closes are no-ops

	assert.Equal(t, 1, ch.joinCount())
	assert.Equal(t, 1, ch.leaveCount())
}

func TestFeedReopenAfterCloseMidLoadMore(t *testing.T) {
	api := twoPageAPI()
	ch := newFakeChannel()
	feed := NewFeed(api, ch, 10)
	require.NoError(t, feed.Open(12))

	gate := make(chan struct{})
	api.mu.Lock()
	api.listGate = gate
	api.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- feed.LoadMore() }()
	assert.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return api.listCalls == 2
	}, time.Second, 5*time.Millisecond)

	// unmount while the page 2 fetch is in flight, then remount
	require.NoError(t, feed.Close())
	close(gate)
	assert.ErrorIs(t, <-done, ErrFeedClosed)

	require.NoError(t, feed.Open(12))
	defer feed.Close()

	// the abandoned fetch must not leave the reopened feed stuck
	require.NoError(t, feed.LoadMore())
	assert.Equal(t, 15, feed.Len())
}

func TestFeedCloseMidFetchDiscardsLateResponse(t *testing.T) {
	api := twoPageAPI()
	gate := make(chan struct{})
	api.listGate = gate

	ch := newFakeChannel()
	feed := NewFeed(api, ch, 10)

	done := make(chan error, 1)
	go func() { done <- feed.Open(12) }()

	// join happens before the fetch; wait for it, then unmount mid-fetch
	assert.Eventually(t, func() bool { return ch.joinCount() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, feed.Close())

	close(gate)
	assert.ErrorIs(t, <-done, ErrFeedClosed)
	assert.Equal(t, 0, feed.Len(), "late page 1 must not populate a closed feed")
	assert.Equal(t, 1, ch.leaveCount(), "unmount mid-fetch still leaves exactly once")
}
