package recruit

import (
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/xonecas/pnw-recruiter/internal/pnw"
)

// Placeholder keys recognised in message templates, written as ${key}.
const (
	KeyNation = "nation"
	KeyLeader = "leader"
	KeyID     = "id"
	KeyScore  = "score"
	KeyCities = "cities"
	KeyInfra  = "infra"
	KeyColor  = "color"
)

// Renderer substitutes nation fields into message templates.
type Renderer struct {
	policy *bluemonday.Policy
}

// NewRenderer creates a renderer. With sanitize set, markup is stripped from
// nation-supplied values before they are inserted.
func NewRenderer(sanitize bool) *Renderer {
	r := &Renderer{}
	if sanitize {
		r.policy = bluemonday.StrictPolicy()
	}
	return r
}

// Render replaces every ${key} in tmpl with the matching field of n.
// Unknown placeholders are left as written.
func (r *Renderer) Render(tmpl string, n pnw.Nation) string {
	values := r.values(n)

	var b strings.Builder
	b.Grow(len(tmpl))
	for {
		start := strings.Index(tmpl, "${")
		if start < 0 {
			b.WriteString(tmpl)
			break
		}
		end := strings.IndexByte(tmpl[start+2:], '}')
		if end < 0 {
			b.WriteString(tmpl)
			break
		}
		end += start + 2

		b.WriteString(tmpl[:start])
		v, ok := values[tmpl[start+2:end]]
		if !ok {
			// Keep the literal and rescan after it, so "${x ${leader}" still expands.
			b.WriteString("${")
			tmpl = tmpl[start+2:]
			continue
		}
		b.WriteString(v)
		tmpl = tmpl[end+1:]
	}
	return b.String()
}

// Render substitutes without sanitising.
func Render(tmpl string, n pnw.Nation) string {
	return (&Renderer{}).Render(tmpl, n)
}

func (r *Renderer) values(n pnw.Nation) map[string]string {
	values := map[string]string{
		KeyNation: n.Name,
		KeyLeader: n.Leader,
		KeyID:     strconv.FormatInt(n.ID, 10),
		KeyScore:  formatFloat(n.Score),
		KeyCities: strconv.Itoa(n.Cities),
		KeyInfra:  formatFloat(n.Infrastructure),
		KeyColor:  n.Color,
	}
	if r.policy != nil {
		for k, v := range values {
			values[k] = r.policy.Sanitize(v)
		}
	}
	return values
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
