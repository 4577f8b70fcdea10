package logging

import (
	"context"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ComponentKey is the attribute key that names the component a record came from.
const ComponentKey = "component"

// levelCacheSize bounds the number of resolved component names kept in memory.
const levelCacheSize = 256

// levelResolver maps component names to minimum levels. Lookups walk the
// dotted name from most to least specific ("openai.http.retry", "openai.http",
// "openai") and fall back to the global level.
type levelResolver struct {
	global    slog.Level
	overrides map[string]slog.Level
	cache     *lru.Cache[string, slog.Level]
}

func newLevelResolver(global slog.Level, components map[string]string) *levelResolver {
	overrides := make(map[string]slog.Level, len(components))
	for name, level := range components {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		overrides[name] = parseLevel(level)
	}
	cache, _ := lru.New[string, slog.Level](levelCacheSize)
	return &levelResolver{global: global, overrides: overrides, cache: cache}
}

// resolve returns the minimum level for component.
func (r *levelResolver) resolve(component string) slog.Level {
	if component == "" || len(r.overrides) == 0 {
		return r.global
	}
	if level, ok := r.cache.Get(component); ok {
		return level
	}

	level := r.global
	name := component
	for {
		if l, ok := r.overrides[name]; ok {
			level = l
			break
		}
		idx := strings.LastIndexByte(name, '.')
		if idx < 0 {
			break
		}
		name = name[:idx]
	}

	r.cache.Add(component, level)
	return level
}

// minLevel is the most verbose level any component may emit.
func (r *levelResolver) minLevel() slog.Level {
	level := r.global
	for _, l := range r.overrides {
		if l < level {
			level = l
		}
	}
	return level
}

// componentHandler enforces the per-component minimum level while delegating
// output to the wrapped handler, which must accept resolver.minLevel().
type componentHandler struct {
	next      slog.Handler
	resolver  *levelResolver
	component string
	level     slog.Level
}

func newComponentHandler(next slog.Handler, resolver *levelResolver) slog.Handler {
	return &componentHandler{
		next:     next,
		resolver: resolver,
		level:    resolver.resolve(""),
	}
}

func (h *componentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	// A per-call component attr may lower the floor, so only reject what no
	// component could accept.
	if h.component == "" {
		if level < h.resolver.minLevel() {
			return false
		}
	} else if level < h.level {
		return false
	}
	return h.next.Enabled(ctx, level)
}

func (h *componentHandler) Handle(ctx context.Context, record slog.Record) error {
	level := h.level
	if h.component == "" {
		record.Attrs(func(a slog.Attr) bool {
			if a.Key == ComponentKey {
				level = h.resolver.resolve(a.Value.String())
				return false
			}
			return true
		})
	}
	if record.Level < level {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h *componentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.next = h.next.WithAttrs(attrs)
	for _, a := range attrs {
		if a.Key == ComponentKey {
			clone.component = a.Value.String()
			clone.level = h.resolver.resolve(clone.component)
		}
	}
	return &clone
}

func (h *componentHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.next = h.next.WithGroup(name)
	return &clone
}

// ForComponent returns a child of logger tagged with component=name. The
// child's minimum level follows the component overrides of the handler that
// built logger.
func ForComponent(logger *slog.Logger, name string) *slog.Logger {
	return logger.With(slog.String(ComponentKey, name))
}
