package portal

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/MrSnakeDoc/navsite/internal/logger"
)

// Mode is the light/dark presentation mode.
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m == ModeLight || m == ModeDark }

// Defaults applied when nothing is persisted and no system preference exists.
const (
	DefaultSkin = "neon"
	DefaultMode = ModeDark
)

// Skin is a named color palette.
type Skin struct {
	Name        string
	DisplayName string
	Icon        string
	Primary     string
	Secondary   string
	Accent      string
	LightBg     string
	DarkBg      string
}

var skins = []Skin{
	{Name: "neon", DisplayName: "霓虹", Icon: "bi-lightning-charge", Primary: "#00f5ff", Secondary: "#ff00e4", Accent: "#faff00", LightBg: "#f0fbff", DarkBg: "#0a0e27"},
	{Name: "ocean", DisplayName: "海洋", Icon: "bi-water", Primary: "#1677ff", Secondary: "#13c2c2", Accent: "#69b1ff", LightBg: "#f0f7ff", DarkBg: "#0b1a2e"},
	{Name: "forest", DisplayName: "森林", Icon: "bi-tree", Primary: "#52c41a", Secondary: "#237804", Accent: "#b7eb8f", LightBg: "#f4fbef", DarkBg: "#0f1f0c"},
	{Name: "sunset", DisplayName: "日落", Icon: "bi-sunset", Primary: "#fa8c16", Secondary: "#f5222d", Accent: "#ffd666", LightBg: "#fff8f0", DarkBg: "#261405"},
	{Name: "lavender", DisplayName: "薰衣草", Icon: "bi-flower1", Primary: "#722ed1", Secondary: "#b37feb", Accent: "#d3adf7", LightBg: "#f9f0ff", DarkBg: "#1a0b2e"},
	{Name: "graphite", DisplayName: "石墨", Icon: "bi-circle-half", Primary: "#595959", Secondary: "#8c8c8c", Accent: "#bfbfbf", LightBg: "#f5f5f5", DarkBg: "#141414"},
	{Name: "sakura", DisplayName: "樱花", Icon: "bi-flower3", Primary: "#eb2f96", Secondary: "#ff85c0", Accent: "#ffd6e7", LightBg: "#fff0f6", DarkBg: "#2a0a1c"},
}

// Skins lists the palettes in display order.
func Skins() []Skin {
	out := make([]Skin, len(skins))
	copy(out, skins)
	return out
}

// LookupSkin finds a palette by name.
func LookupSkin(name string) (Skin, bool) {
	for _, s := range skins {
		if s.Name == name {
			return s, true
		}
	}
	return Skin{}, false
}

// Theme is the persisted preference.
type Theme struct {
	Skin string `json:"skin"`
	Mode Mode   `json:"mode"`
}

// Var is one CSS custom property.
type Var struct {
	Name  string
	Value string
}

// StyleSink receives CSS custom properties.
type StyleSink interface {
	SetProperty(name, value string)
}

// MapSink collects properties in a map.
type MapSink map[string]string

func (m MapSink) SetProperty(name, value string) { m[name] = value }

// ThemeManager owns the skin+mode state. Every transition recomputes the
// variables, pushes them to the sinks, persists and notifies listeners.
type ThemeManager struct {
	storage Storage
	logger  logger.Logger

	mu        sync.Mutex
	theme     Theme
	sinks     []StyleSink
	listeners []func(Theme)
}

// NewThemeManager loads the persisted preference. prefersDark reports the
// system preference and may be nil.
func NewThemeManager(storage Storage, prefersDark func() (dark bool, known bool), log logger.Logger) *ThemeManager {
	tm := &ThemeManager{storage: storage, logger: log}
	tm.theme = tm.load(prefersDark)
	return tm
}

func (tm *ThemeManager) load(prefersDark func() (bool, bool)) Theme {
	t := Theme{Skin: DefaultSkin, Mode: DefaultMode}

	if prefersDark != nil {
		if dark, known := prefersDark(); known {
			t.Mode = ModeLight
			if dark {
				t.Mode = ModeDark
			}
		}
	}

	if v, ok, err := tm.storage.GetItem(KeySkin); err == nil && ok {
		if _, known := LookupSkin(v); known {
			t.Skin = v
		}
	}
	if v, ok, err := tm.storage.GetItem(KeyTheme); err == nil && ok && Mode(v).Valid() {
		t.Mode = Mode(v)
	}
	return t
}

// Theme returns the current state.
func (tm *ThemeManager) Theme() Theme {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.theme
}

// AttachSink registers a sink and applies the current variables to it.
func (tm *ThemeManager) AttachSink(sink StyleSink) {
	tm.mu.Lock()
	tm.sinks = append(tm.sinks, sink)
	vars := Variables(tm.theme)
	tm.mu.Unlock()

	for _, v := range vars {
		sink.SetProperty(v.Name, v.Value)
	}
}

// OnChange registers a listener called after every transition.
func (tm *ThemeManager) OnChange(fn func(Theme)) {
	tm.mu.Lock()
	tm.listeners = append(tm.listeners, fn)
	tm.mu.Unlock()
}

// SetSkin switches palette. Unknown names are ignored with a warning.
func (tm *ThemeManager) SetSkin(name string) bool {
	if _, ok := LookupSkin(name); !ok {
		tm.logger.Warn("unknown skin", logger.String("skin", name))
		return false
	}
	tm.transition(func(t *Theme) { t.Skin = name })
	return true
}

// SetMode switches mode. Invalid modes are ignored.
func (tm *ThemeManager) SetMode(mode Mode) bool {
	if !mode.Valid() {
		return false
	}
	tm.transition(func(t *Theme) { t.Mode = mode })
	return true
}

// ToggleMode flips between light and dark.
func (tm *ThemeManager) ToggleMode() Mode {
	var m Mode
	tm.transition(func(t *Theme) {
		if t.Mode == ModeDark {
			t.Mode = ModeLight
		} else {
			t.Mode = ModeDark
		}
		m = t.Mode
	})
	return m
}

func (tm *ThemeManager) transition(mutate func(*Theme)) {
	tm.mu.Lock()
	mutate(&tm.theme)
	t := tm.theme
	sinks := append([]StyleSink(nil), tm.sinks...)
	listeners := append([]func(Theme){}, tm.listeners...)
	tm.mu.Unlock()

	vars := Variables(t)
	for _, s := range sinks {
		for _, v := range vars {
			s.SetProperty(v.Name, v.Value)
		}
	}

	if err := tm.storage.SetItem(KeySkin, t.Skin); err != nil {
		tm.logger.Warn("failed to persist skin", logger.Error(err))
	}
	if err := tm.storage.SetItem(KeyTheme, string(t.Mode)); err != nil {
		tm.logger.Warn("failed to persist mode", logger.Error(err))
	}

	for _, fn := range listeners {
		fn(t)
	}
}

// Variables computes the CSS custom properties of a theme.
func Variables(t Theme) []Var {
	s, ok := LookupSkin(t.Skin)
	if !ok {
		s, _ = LookupSkin(DefaultSkin)
	}
	r, g, b := HexToRGB(s.Primary)
	rgb := fmt.Sprintf("%d, %d, %d", r, g, b)

	vars := []Var{
		{"--primary-color", s.Primary},
		{"--secondary-color", s.Secondary},
		{"--accent-color", s.Accent},
		{"--primary-rgb", rgb},
	}
	if t.Mode == ModeDark {
		vars = append(vars,
			Var{"--bg-color", s.DarkBg},
			Var{"--card-bg", "rgba(255, 255, 255, 0.06)"},
			Var{"--text-color", "#e6e6e6"},
			Var{"--text-secondary", "#a6a6a6"},
			Var{"--menu-hover-bg", fmt.Sprintf("rgba(%s, 0.2)", rgb)},
			Var{"--shadow-color", fmt.Sprintf("rgba(%s, 0.35)", rgb)},
		)
	} else {
		vars = append(vars,
			Var{"--bg-color", s.LightBg},
			Var{"--card-bg", "#ffffff"},
			Var{"--text-color", "#1f1f1f"},
			Var{"--text-secondary", "#595959"},
			Var{"--menu-hover-bg", fmt.Sprintf("rgba(%s, 0.12)", rgb)},
			Var{"--shadow-color", "rgba(0, 0, 0, 0.08)"},
		)
	}
	return vars
}

// HexToRGB parses #rgb or #rrggbb. Invalid input yields black.
func HexToRGB(hex string) (r, g, b int) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
