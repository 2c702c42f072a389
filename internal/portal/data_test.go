package portal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/navsite/internal/domain"
	"github.com/MrSnakeDoc/navsite/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 8, 11, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeBackend is an in-memory server.
type fakeBackend struct {
	mu       sync.Mutex
	nav      *domain.NavigationMap
	mock     bool
	fetchErr error
	fetches  int32
	seq      int
	block    chan struct{}

	// The first fetch snapshots the data, closes held and waits on holdFirst.
	holdFirst chan struct{}
	held      chan struct{}
}

func newFakeBackend() *fakeBackend {
	nav := domain.NewNavigationMap()
	nav.Append("工具", domain.LinkRecord{ID: "rec1", Name: "Tool", URL: "https://tool.example", Category: "工具"})
	return &fakeBackend{nav: nav}
}

func (f *fakeBackend) FetchNavigation(ctx context.Context) (Payload, error) {
	n := atomic.AddInt32(&f.fetches, 1)

	f.mu.Lock()
	fetchErr := f.fetchErr
	// Copy so callers never share the backend's map.
	data, _ := json.Marshal(f.nav)
	mock := f.mock
	f.mu.Unlock()

	if f.block != nil {
		<-f.block
	}
	if n == 1 && f.holdFirst != nil {
		close(f.held)
		<-f.holdFirst
	}
	if err := ctx.Err(); err != nil {
		return Payload{}, err
	}
	if fetchErr != nil {
		return Payload{}, fetchErr
	}
	var nav domain.NavigationMap
	_ = json.Unmarshal(data, &nav)
	return Payload{Success: true, Data: &nav, Categories: nav.Categories(), IsMockData: mock}, nil
}

func (f *fakeBackend) CreateLink(ctx context.Context, link domain.NewLink) (MutationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	id := "new" + string(rune('0'+f.seq))
	f.nav.Append(link.Category, domain.LinkRecord{ID: id, Name: link.Name, URL: link.URL, Category: link.Category})
	return MutationResult{Success: true, Message: "created", Data: domain.RawRecord{ID: id}}, nil
}

func (f *fakeBackend) DeleteLink(ctx context.Context, id string) (MutationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.nav.Categories() {
		links := f.nav.Links(c)
		for i, l := range links {
			if l.ID == id {
				f.nav.Set(c, append(links[:i:i], links[i+1:]...))
				return MutationResult{Success: true}, nil
			}
		}
	}
	return MutationResult{}, &BadResponseError{Status: 500, Message: "RecordIdNotFound"}
}

func TestFetchCacheTTL(t *testing.T) {
	clock := newTestClock()
	backend := newFakeBackend()
	dm := NewDataManager(backend, nil, clock.Now, logger.Nop())
	ctx := t.Context()

	first := dm.FetchNavigationData(ctx, false)
	require.True(t, first.Success)
	assert.False(t, first.FromCache)
	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.fetches))

	clock.Advance(4*time.Minute + 59*time.Second)
	cached := dm.FetchNavigationData(ctx, false)
	assert.True(t, cached.FromCache)
	assert.Same(t, first.Data, cached.Data)
	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.fetches))

	clock.Advance(2 * time.Second)
	fresh := dm.FetchNavigationData(ctx, false)
	assert.False(t, fresh.FromCache)
	assert.Equal(t, int32(2), atomic.LoadInt32(&backend.fetches))
}

func TestForceRefreshBypassesCache(t *testing.T) {
	backend := newFakeBackend()
	dm := NewDataManager(backend, nil, nil, logger.Nop())

	dm.FetchNavigationData(t.Context(), false)
	res := dm.FetchNavigationData(t.Context(), true)
	assert.False(t, res.FromCache)
	assert.Equal(t, int32(2), atomic.LoadInt32(&backend.fetches))
}

func TestFallbackOn503IsNotPersisted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	storage := NewMemoryStorage()
	dm := NewDataManager(NewAPIClient(srv.URL, nil), NewStorageCache(storage, logger.Nop()), nil, logger.Nop())

	res := dm.FetchNavigationData(t.Context(), false)
	assert.True(t, res.Success)
	assert.True(t, res.FromDefault)
	assert.Equal(t, []string{"Code", "设计", "工具", "学习"}, res.Categories)

	_, ok, err := storage.GetItem(KeyNavigationCache)
	require.NoError(t, err)
	assert.False(t, ok, "default dataset must not be cached")
}

func TestFallbackOnNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	dm := NewDataManager(NewAPIClient(srv.URL, nil), nil, nil, logger.Nop())
	res := dm.FetchNavigationData(t.Context(), false)
	assert.True(t, res.FromDefault)
}

func TestFallbackOnUnsuccessfulPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"success":false,"message":"boom"}`))
	}))
	defer srv.Close()

	dm := NewDataManager(NewAPIClient(srv.URL, nil), nil, nil, logger.Nop())
	res := dm.FetchNavigationData(t.Context(), false)
	assert.True(t, res.FromDefault)
}

func TestDefaultDatasetRetriesNetwork(t *testing.T) {
	backend := newFakeBackend()
	backend.fetchErr = &NetworkError{Err: errors.New("refused")}
	dm := NewDataManager(backend, nil, nil, logger.Nop())

	assert.True(t, dm.FetchNavigationData(t.Context(), false).FromDefault)
	backend.fetchErr = nil
	res := dm.FetchNavigationData(t.Context(), false)
	assert.False(t, res.FromDefault)
	assert.Equal(t, int32(2), atomic.LoadInt32(&backend.fetches))
}

func TestMockPayloadIsNotCached(t *testing.T) {
	backend := newFakeBackend()
	backend.mock = true
	dm := NewDataManager(backend, nil, nil, logger.Nop())

	res := dm.FetchNavigationData(t.Context(), false)
	assert.True(t, res.IsMockData)
	dm.FetchNavigationData(t.Context(), false)
	assert.Equal(t, int32(2), atomic.LoadInt32(&backend.fetches))
}

func TestAddDeleteRoundTrip(t *testing.T) {
	backend := newFakeBackend()
	dm := NewDataManager(backend, nil, nil, logger.Nop())
	ctx := t.Context()

	dm.FetchNavigationData(ctx, false)
	res, err := dm.AddLink(ctx, domain.NewLink{Name: "Example", URL: "https://example.com", Category: "工具"})
	require.NoError(t, err)

	// Cache was invalidated, so even a non-forced read hits the server.
	nav := dm.FetchNavigationData(ctx, false)
	assert.False(t, nav.FromCache)
	found, ok := nav.Data.Find(res.Data.ID)
	require.True(t, ok)
	assert.Equal(t, "工具", found.Category)

	_, err = dm.DeleteLink(ctx, res.Data.ID)
	require.NoError(t, err)
	nav = dm.FetchNavigationData(ctx, true)
	_, ok = nav.Data.Find(res.Data.ID)
	assert.False(t, ok)
}

func TestAddLinkValidatesLocally(t *testing.T) {
	dm := NewDataManager(newFakeBackend(), nil, nil, logger.Nop())
	_, err := dm.AddLink(t.Context(), domain.NewLink{Name: "", URL: "https://x.example", Category: "c"})
	var v *domain.ValidationError
	assert.ErrorAs(t, err, &v)
}

func TestDeleteMockRecordMessage(t *testing.T) {
	dm := NewDataManager(newFakeBackend(), nil, nil, logger.Nop())

	res, err := dm.DeleteLink(t.Context(), "mock_003")
	var demo *DemoRecordError
	require.ErrorAs(t, err, &demo)
	assert.Equal(t, DemoRecordMessage, res.Message)

	_, err = dm.DeleteLink(t.Context(), "recMISSING")
	require.Error(t, err)
	assert.False(t, errors.As(err, &demo))
}

func TestConcurrentFetchesCollapse(t *testing.T) {
	backend := newFakeBackend()
	backend.block = make(chan struct{})
	dm := NewDataManager(backend, nil, nil, logger.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, dm.FetchNavigationData(context.Background(), true).Success)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(backend.block)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.fetches))
	require.NotNil(t, dm.Current())
}

func TestRefreshAfterAddLinkDoesNotJoinEarlierRead(t *testing.T) {
	backend := newFakeBackend()
	backend.holdFirst = make(chan struct{})
	backend.held = make(chan struct{})
	dm := NewDataManager(backend, nil, nil, logger.Nop())
	ctx := t.Context()

	before := make(chan Result, 1)
	go func() { before <- dm.FetchNavigationData(ctx, false) }()
	<-backend.held

	added, err := dm.AddLink(ctx, domain.NewLink{Name: "Example", URL: "https://example.com", Category: "工具"})
	require.NoError(t, err)

	fresh := dm.FetchNavigationData(ctx, true)
	_, ok := fresh.Data.Find(added.Data.ID)
	assert.True(t, ok, "refresh after a mutation must see it")

	close(backend.holdFirst)
	old := <-before
	_, ok = old.Data.Find(added.Data.ID)
	assert.False(t, ok)

	// The older read finished last but must not overwrite the cache.
	cached := dm.FetchNavigationData(ctx, false)
	assert.True(t, cached.FromCache)
	_, ok = cached.Data.Find(added.Data.ID)
	assert.True(t, ok)
	assert.Equal(t, int32(2), atomic.LoadInt32(&backend.fetches))
}

func TestCancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	backend := newFakeBackend()
	backend.holdFirst = make(chan struct{})
	backend.held = make(chan struct{})
	dm := NewDataManager(backend, nil, nil, logger.Nop())

	first, cancel := context.WithCancel(context.Background())
	firstRes := make(chan Result, 1)
	go func() { firstRes <- dm.FetchNavigationData(first, true) }()
	<-backend.held

	secondRes := make(chan Result, 1)
	go func() { secondRes <- dm.FetchNavigationData(context.Background(), true) }()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.True(t, (<-firstRes).FromDefault)

	close(backend.holdFirst)
	second := <-secondRes
	assert.False(t, second.FromDefault)
	_, ok := second.Data.Find("rec1")
	assert.True(t, ok)
	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.fetches))

	cached := dm.FetchNavigationData(context.Background(), false)
	assert.True(t, cached.FromCache)
}

func TestStorageCacheEvictsCorruptAndExpired(t *testing.T) {
	clock := newTestClock()
	storage := NewMemoryStorage()
	cache := NewStorageCache(storage, logger.Nop())

	require.NoError(t, storage.SetItem(KeyNavigationCache, "{not json"))
	_, ok := cache.Get(clock.Now())
	assert.False(t, ok)
	_, present, _ := storage.GetItem(KeyNavigationCache)
	assert.False(t, present)

	nav := domain.NewNavigationMap()
	nav.Append("A", domain.LinkRecord{ID: "1", Name: "a", URL: "https://a.example", Category: "A"})
	cache.Set(Payload{Success: true, Data: nav, Categories: nav.Categories()}, clock.Now())

	clock.Advance(4 * time.Minute)
	got, ok := cache.Get(clock.Now())
	require.True(t, ok)
	assert.Equal(t, []string{"A"}, got.Categories)

	clock.Advance(2 * time.Minute)
	_, ok = cache.Get(clock.Now())
	assert.False(t, ok)
	_, present, _ = storage.GetItem(KeyNavigationCache)
	assert.False(t, present)
}

func TestDefaultNavigation(t *testing.T) {
	nav := DefaultNavigation()
	assert.Equal(t, DefaultCategories, nav.Categories())
	for _, l := range nav.All() {
		assert.True(t, domain.IsMockID(l.ID), l.ID)
	}
	assert.Equal(t, "mock_default_01", nav.All()[0].ID)
}
