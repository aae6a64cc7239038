package resolve

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/IgorDevApp/aptcatalog/helper"
)

// Registry resolves alternate group names to canonical names. It holds
// two tables: a static one seeded from DefaultStaticAliases, which is
// never overwritten, and a dynamic one built from ingested aliases,
// where the last registration for an alias string wins. All lookups
// are exact matches on the canonicalized, lower-cased alias; absence
// of a mapping is not a failure but falls back to the input itself.
type Registry struct {
	log *slog.Logger

	static  map[string]string   // lower-cased alias -> canonical name
	dynamic map[string]string   // lower-cased alias -> canonical name
	known   map[string][]string // canonical name -> display aliases, registration order

	registered int
	resolved   int
	collisions int
}

// NewRegistry creates a registry seeded with the static alias table
func NewRegistry(logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		return nil, helper.NewError("logger validation", fmt.Errorf("logger is nil"))
	}

	r := &Registry{
		log: logger,
	}
	r.Reset()

	return r, nil
}

// Reset clears all dynamically registered aliases and counters and
// re-seeds the static table. It must be called before every full
// ingestion pass so no state leaks between rebuilds.
func (r *Registry) Reset() {
	r.static = make(map[string]string)
	r.dynamic = make(map[string]string)
	r.known = make(map[string][]string)
	r.registered = 0
	r.resolved = 0
	r.collisions = 0

	for canonical, aliases := range DefaultStaticAliases {
		for _, alias := range aliases {
			r.static[strings.ToLower(Canonicalize(alias))] = canonical
			r.known[canonical] = appendUnique(r.known[canonical], alias)
		}
	}
}

// RegisterAliases records that the given aliases resolve to
// canonicalName. Later registrations of the same alias string point it
// at the new canonical name; the collision is logged and counted, not
// raised, because upstream catalogs legitimately reuse aliases across
// groups in rare cases.
func (r *Registry) RegisterAliases(canonicalName string, aliases ...string) {
	canonical := Canonicalize(canonicalName)

	for _, alias := range aliases {
		if strings.TrimSpace(alias) == "" {
			continue
		}

		key := strings.ToLower(Canonicalize(alias))
		if existing, ok := r.dynamic[key]; ok && existing != canonical {
			r.collisions++
			r.log.Warn("Alias already registered for another group",
				slog.String("alias", alias),
				slog.String("previous", existing),
				slog.String("new", canonical),
			)
		}
		r.dynamic[key] = canonical
		r.registered++

		// Raw spelling kept for display
		r.known[canonical] = appendUnique(r.known[canonical], alias)
	}
}

// Resolve maps any name to its canonical name. The static table is
// checked first, then the dynamic table; if neither knows the name,
// the canonicalized input itself is returned. Resolve is total and
// never fails.
func (r *Registry) Resolve(name string) string {
	canonical := Canonicalize(name)
	key := strings.ToLower(canonical)

	if target, ok := r.static[key]; ok {
		r.resolved++
		return target
	}
	if target, ok := r.dynamic[key]; ok {
		r.resolved++
		return target
	}

	return canonical
}

// SameEntity reports whether two names resolve to the same group
func (r *Registry) SameEntity(nameA, nameB string) bool {
	return strings.EqualFold(r.Resolve(nameA), r.Resolve(nameB))
}

// KnownAliases returns the display spellings of all aliases registered
// for a canonical name, in registration order
func (r *Registry) KnownAliases(canonicalName string) []string {
	aliases := r.known[Canonicalize(canonicalName)]
	out := make([]string, len(aliases))
	copy(out, aliases)
	return out
}

// Registered returns the number of alias registrations since the last reset
func (r *Registry) Registered() int {
	return r.registered
}

// Resolved returns the number of lookups that hit a table since the last reset
func (r *Registry) Resolved() int {
	return r.resolved
}

// Collisions returns the number of alias collisions since the last reset
func (r *Registry) Collisions() int {
	return r.collisions
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
