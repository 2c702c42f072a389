package handlers

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/navsite/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navsite/internal/logger"
	"github.com/MrSnakeDoc/navsite/internal/portal"
)

const mockNotice = "演示数据：未连接到数据表"

func faviconPath(siteURL string) string {
	return "/api/favicon?url=" + url.QueryEscape(siteURL)
}

// Page renders the portal at /. Query parameters: q (search), category,
// skin and mode. Unknown skins and modes fall back to the defaults.
func Page(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		resp := d.Navigation.Navigation(r.Context())

		theme := portal.Theme{Skin: portal.DefaultSkin, Mode: portal.DefaultMode}
		if _, ok := portal.LookupSkin(q.Get("skin")); ok {
			theme.Skin = q.Get("skin")
		}
		if m := portal.Mode(q.Get("mode")); m.Valid() {
			theme.Mode = m
		}

		favicons := portal.NewFaviconResolver(faviconPath, portal.NewMemoryStorage(), d.TimeNow, d.Logger)
		renderer := portal.NewRenderer(favicons, portal.NewBadgeGenerator(nil), func() portal.Mode { return theme.Mode })
		renderer.Load(resp.Data)

		category := q.Get("category")
		if category == "" {
			category = portal.CategoryAll
		}
		tools := renderer.ShowTools(category)

		query := strings.TrimSpace(q.Get("q"))
		if query != "" {
			tools = renderer.ToolViews(portal.Filter(resp.Data, query))
		}

		page := portal.Page{
			Theme:    theme,
			Menu:     renderer.Menu(),
			Tools:    tools,
			DateInfo: resp.DateInfo,
			Query:    query,
		}
		if resp.IsMockData {
			page.Notice = mockNotice
		}

		var buf bytes.Buffer
		if err := portal.RenderPage(&buf, page); err != nil {
			d.Logger.Error("page render failed", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = buf.WriteTo(w)
	}
}
