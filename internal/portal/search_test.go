package portal

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/navsite/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	nav := testNav()
	got := Filter(nav, "  GIT ")
	require.Len(t, got, 1)
	assert.Equal(t, "GitHub", got[0].Name)

	assert.Len(t, Filter(nav, ""), 4)
	assert.Empty(t, Filter(nav, "zzz"))
}

func TestSearchFetchesOnceBeforeLoad(t *testing.T) {
	backend := newFakeBackend()
	dm := NewDataManager(backend, nil, nil, logger.Nop())
	s := NewSearcher(dm)

	got := s.Search(t.Context(), "tool")
	require.Len(t, got, 1)
	s.Search(t.Context(), "tool")
	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.fetches))
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		text, term, want string
	}{
		{"GitHub", "hub", "Git<mark>Hub</mark>"},
		{"a.b.c", ".", "a<mark>.</mark>b<mark>.</mark>c"},
		{"<b>x</b>", "x", "&lt;b&gt;<mark>x</mark>&lt;/b&gt;"},
		{"Go", "(", "Go"},
		{"Go", "", "Go"},
		{"知乎", "乎", "知<mark>乎</mark>"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(Highlight(tt.text, tt.term)), tt.text+"/"+tt.term)
	}
}

func TestInstallPrompt(t *testing.T) {
	clock := newTestClock()
	p := NewInstallPrompt(NewMemoryStorage(), clock.Now)

	assert.True(t, p.ShouldShow())
	require.NoError(t, p.Dismiss())
	clock.Advance(23 * time.Hour)
	assert.False(t, p.ShouldShow())
	clock.Advance(time.Hour)
	assert.True(t, p.ShouldShow())

	require.NoError(t, p.Dismiss())
	require.NoError(t, p.Installed())
	assert.True(t, p.ShouldShow())
}

func TestSchedulerReplaceCancelClose(t *testing.T) {
	s := NewScheduler()
	var runs int32

	s.After("task", 20*time.Millisecond, func() { atomic.AddInt32(&runs, 10) })
	s.After("task", 20*time.Millisecond, func() { atomic.AddInt32(&runs, 1) })
	assert.Equal(t, 1, s.Pending())

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, s.Pending())

	s.After("cancelled", time.Hour, func() { atomic.AddInt32(&runs, 100) })
	assert.True(t, s.Cancel("cancelled"))
	assert.False(t, s.Cancel("cancelled"))

	s.After("pending", time.Hour, func() { atomic.AddInt32(&runs, 1000) })
	s.Close()
	assert.Equal(t, 0, s.Pending())
	assert.False(t, s.After("late", time.Millisecond, func() {}))
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}

func TestAppThemeChangeRefreshesIcons(t *testing.T) {
	backend := newFakeBackend()
	app := NewApp(Options{ServerURL: "http://portal.test"}, logger.Nop())
	defer app.Close()
	app.Data = NewDataManager(backend, nil, nil, logger.Nop())

	res := app.Load(t.Context(), false)
	require.True(t, res.Success)
	require.Equal(t, IconFavicon, app.Renderer.Tools()[0].Icon.Kind)
	assert.Equal(t, 80, app.Renderer.Tools()[0].Icon.Badge.Lightness)

	app.Theme.SetMode(ModeLight)
	assert.Eventually(t, func() bool {
		return app.Renderer.Tools()[0].Icon.Badge.Lightness == 90
	}, time.Second, 5*time.Millisecond)

	page := app.Page(res, "")
	assert.Equal(t, ModeLight, page.Theme.Mode)
	assert.Len(t, page.Tools, 1)
}
