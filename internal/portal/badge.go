package portal

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"unicode"
)

// Badge is the text tile shown when a site has no usable icon.
type Badge struct {
	Text      string
	Hue       int
	Lightness int
}

// Background returns the CSS color of the badge.
func (b Badge) Background() string {
	return fmt.Sprintf("hsl(%d, 70%%, %d%%)", b.Hue, b.Lightness)
}

// BadgeGenerator builds badges. The hue comes from the injected source, so a
// seeded source gives reproducible colors.
type BadgeGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewBadgeGenerator wraps rnd. A nil source is seeded from the clock.
func NewBadgeGenerator(rnd *rand.Rand) *BadgeGenerator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	return &BadgeGenerator{rnd: rnd}
}

// Generate builds a badge for name in the given mode.
func (g *BadgeGenerator) Generate(name string, mode Mode) Badge {
	g.mu.Lock()
	hue := g.rnd.Intn(360)
	g.mu.Unlock()

	lightness := 90
	if mode == ModeDark {
		lightness = 80
	}
	return Badge{Text: BadgeText(name), Hue: hue, Lightness: lightness}
}

// BadgeText is the first character for names starting with a CJK
// ideograph, otherwise the initials of the first two words (or the first two
// letters of a single word), uppercased.
func BadgeText(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "?"
	}
	runes := []rune(name)
	if unicode.Is(unicode.Han, runes[0]) {
		return string(runes[0])
	}

	words := strings.Fields(name)
	if len(words) >= 2 {
		a := []rune(words[0])[0]
		b := []rune(words[1])[0]
		return strings.ToUpper(string([]rune{a, b}))
	}
	w := []rune(words[0])
	if len(w) > 2 {
		w = w[:2]
	}
	return strings.ToUpper(string(w))
}
