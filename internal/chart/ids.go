package chart

import (
	"strings"

	"github.com/google/uuid"
)

const idPrefix = "cf"

// Gradient is a vertical fade used to fill the area under a curve.
type Gradient struct {
	ID            string  `json:"id"`
	Color         string  `json:"color"`
	TopOpacity    float64 `json:"topOpacity"`
	BottomOpacity float64 `json:"bottomOpacity"`
}

// Resources are the style resources declared by one chart instance. Every
// identifier is derived from Seed, which is unique to the instance.
type Resources struct {
	Seed       string     `json:"seed,omitempty"`
	ClipPathID string     `json:"clipPathId,omitempty"`
	Gradients  []Gradient `json:"gradients,omitempty"`
}

// IDs returns every identifier declared by the instance.
func (r Resources) IDs() []string {
	if r.Seed == "" {
		return nil
	}
	ids := make([]string, 0, len(r.Gradients)+1)
	ids = append(ids, r.ClipPathID)
	for _, g := range r.Gradients {
		ids = append(ids, g.ID)
	}
	return ids
}

// Declares reports whether id was allocated by this instance.
func (r Resources) Declares(id string) bool {
	for _, declared := range r.IDs() {
		if declared == id {
			return true
		}
	}
	return false
}

// allocator hands out identifiers scoped to a single chart instance.
type allocator struct {
	seed      string
	gradients []Gradient
}

func newAllocator(seed string) *allocator {
	return &allocator{seed: sanitizeSeed(seed)}
}

func (a *allocator) id(name string) string {
	return idPrefix + "-" + a.seed + "-" + name
}

func (a *allocator) gradient(name, color string) string {
	id := a.id("fill-" + name)
	a.gradients = append(a.gradients, Gradient{
		ID:            id,
		Color:         color,
		TopOpacity:    0.35,
		BottomOpacity: 0.02,
	})
	return id
}

func (a *allocator) resources() Resources {
	return Resources{
		Seed:       a.seed,
		ClipPathID: a.id("clip"),
		Gradients:  append([]Gradient(nil), a.gradients...),
	}
}

func randomSeed() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// sanitizeSeed keeps identifiers valid as XML/CSS names. ASCII letters and
// digits pass through; every other byte, '_' included, becomes '_' followed
// by two hex digits, so distinct seeds always yield distinct identifiers.
func sanitizeSeed(seed string) string {
	const hexDigits = "0123456789abcdef"
	var sb strings.Builder
	for i := 0; i < len(seed); i++ {
		c := seed[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			sb.WriteByte(c)
		default:
			sb.WriteByte('_')
			sb.WriteByte(hexDigits[c>>4])
			sb.WriteByte(hexDigits[c&0x0f])
		}
	}
	if sb.Len() == 0 {
		return randomSeed()
	}
	return sb.String()
}

func fillURL(id string) string {
	return "url(#" + id + ")"
}

func referencedID(ref string) (string, bool) {
	if !strings.HasPrefix(ref, "url(#") || !strings.HasSuffix(ref, ")") {
		return "", false
	}
	return ref[len("url(#") : len(ref)-1], true
}
