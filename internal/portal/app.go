package portal

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/navsite/internal/logger"
)

// IconRefreshDelay defers badge regeneration after a theme change so
// consecutive transitions regenerate once.
const IconRefreshDelay = 50 * time.Millisecond

// Options configures an App.
type Options struct {
	ServerURL   string
	HTTPClient  *http.Client
	Storage     Storage // nil = MemoryStorage
	PersistData bool    // persist the navigation cache in Storage instead of memory
	Rand        *rand.Rand
	Now         func() time.Time
	PrefersDark func() (dark bool, known bool)
}

// App wires the client components together.
type App struct {
	API       *APIClient
	Data      *DataManager
	Theme     *ThemeManager
	Favicons  *FaviconResolver
	Renderer  *Renderer
	Search    *Searcher
	Install   *InstallPrompt
	Scheduler *Scheduler

	logger logger.Logger
}

// NewApp builds an App.
func NewApp(opts Options, log logger.Logger) *App {
	if opts.Storage == nil {
		opts.Storage = NewMemoryStorage()
	}
	api := NewAPIClient(opts.ServerURL, opts.HTTPClient)

	var cache NavigationCache = &MemoryCache{}
	if opts.PersistData {
		cache = NewStorageCache(opts.Storage, log)
	}

	a := &App{
		API:       api,
		Data:      NewDataManager(api, cache, opts.Now, log),
		Theme:     NewThemeManager(opts.Storage, opts.PrefersDark, log),
		Favicons:  NewFaviconResolver(api.FaviconURL, opts.Storage, opts.Now, log),
		Install:   NewInstallPrompt(opts.Storage, opts.Now),
		Scheduler: NewScheduler(),
		logger:    log,
	}
	a.Renderer = NewRenderer(a.Favicons, NewBadgeGenerator(opts.Rand), func() Mode { return a.Theme.Theme().Mode })
	a.Search = NewSearcher(a.Data)

	a.Theme.OnChange(func(Theme) {
		a.Scheduler.After("refresh-icons", IconRefreshDelay, a.Renderer.RefreshIcons)
	})
	return a
}

// Load fetches navigation data and hands it to the renderer.
func (a *App) Load(ctx context.Context, force bool) Result {
	res := a.Data.FetchNavigationData(ctx, force)
	a.Renderer.Load(res.Data)
	return res
}

// Page builds the page view model for the current state.
func (a *App) Page(res Result, query string) Page {
	p := Page{
		Theme:    a.Theme.Theme(),
		Menu:     a.Renderer.Menu(),
		DateInfo: res.DateInfo,
		Query:    query,
	}
	if query != "" {
		p.Tools = a.Renderer.ToolViews(Filter(res.Data, query))
	} else {
		p.Tools = a.Renderer.Tools()
	}
	switch {
	case res.FromDefault:
		p.Notice = "离线模式：显示默认数据"
	case res.IsMockData:
		p.Notice = "演示数据：未连接到数据表"
	}
	return p
}

// Close cancels pending deferred tasks.
func (a *App) Close() {
	a.Scheduler.Close()
}
