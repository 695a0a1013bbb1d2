package match

import (
	"log/slog"
	"sync/atomic"

	"github.com/denis-zhdanov/jenome/internal/log"
	"github.com/denis-zhdanov/jenome/resolve"
	"github.com/denis-zhdanov/jenome/typespec"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidArgument reports a nil base or candidate, or a base of the
	// wrong variant handed to a per-variant matcher. It is a caller bug,
	// never a "types are incompatible" outcome.
	ErrInvalidArgument = errors.New("invalid match arguments")

	// ErrDepthExceeded reports that nested comparisons went past
	// matchDepthLimit, which only happens on pathological or cyclic type
	// graphs.
	ErrDepthExceeded = errors.New("nested comparison depth limit exceeded")
)

// matchDepthLimit caps context stack growth. Genuine generic nesting is
// shallow; the limit exists to turn a cyclic type graph into an error
// instead of unbounded recursion.
const matchDepthLimit = 64

// ComplianceMatcher answers whether a candidate type specification may be
// used where a base one is expected. Implementations are safe for
// concurrent use: all per-call state lives in the Context.
type ComplianceMatcher interface {
	// Match runs a lenient top-level comparison in a fresh context.
	Match(base, candidate typespec.TypeSpec) (bool, error)

	// MatchIn runs one comparison inside ctx, pushing a frame around it.
	// Nested generic-argument comparisons re-enter here with the same ctx
	// and strict=true; wildcard bound checks re-enter with strict=false.
	// A nil ctx behaves like Match.
	MatchIn(ctx *Context, base, candidate typespec.TypeSpec, strict bool) (bool, error)

	SetTypeArgumentResolver(resolver resolve.TypeArgumentResolver)
	TypeArgumentResolver() resolve.TypeArgumentResolver
}

// VisitorFunc supplies the visitor holding one matcher's comparison logic
// for a single dispatch. The visitor reports through ctx.SetMatched and
// recurses by calling back into a matcher's MatchIn with the same ctx.
type VisitorFunc func(ctx *Context) resolve.TypeVisitor

// EngineConfig assembles an Engine: the visitor factory is the one
// required extension point, Cleanup the optional one.
type EngineConfig struct {
	// Name tags log records and error messages.
	Name string

	// VisitorFor is consulted on every dispatch.
	VisitorFor VisitorFunc

	// Cleanup fires exactly once per completed outermost call on a
	// context, nested calls never trigger it. It must be safe to call
	// with no per-call state present. May be nil.
	Cleanup func() error
}

// Engine implements the fixed matching algorithm every compliance matcher
// shares: push a frame, dispatch the candidate through the configured
// visitor, read the verdict back fail-closed, pop, and fire Cleanup when
// the stack returns to the sentinel.
type Engine struct {
	name       string
	visitorFor VisitorFunc
	cleanup    func() error
	resolver   atomic.Pointer[resolve.TypeArgumentResolver]
	dispatcher resolve.TypeDispatcher
	log        *slog.Logger
}

var _ ComplianceMatcher = (*Engine)(nil)

func NewEngine(cfg EngineConfig) *Engine {
	if cfg.VisitorFor == nil {
		panic("match: EngineConfig.VisitorFor is required")
	}
	e := &Engine{
		name:       cfg.Name,
		visitorFor: cfg.VisitorFor,
		cleanup:    cfg.Cleanup,
		log:        log.DefaultLogger.With(slog.String("section", "match")),
	}
	e.SetTypeArgumentResolver(resolve.Default)
	return e
}

func (e *Engine) Match(base, candidate typespec.TypeSpec) (bool, error) {
	return e.MatchIn(NewContext(), base, candidate, false)
}

func (e *Engine) MatchIn(ctx *Context, base, candidate typespec.TypeSpec, strict bool) (matched bool, err error) {
	if base == nil || candidate == nil {
		return false, errors.Wrapf(ErrInvalidArgument, "%s matcher requires non-nil base and candidate", e.name)
	}
	if ctx == nil {
		ctx = NewContext()
	}
	if ctx.Depth() >= matchDepthLimit {
		return false, errors.Wrapf(ErrDepthExceeded, "%s matcher at depth %d", e.name, ctx.Depth())
	}

	ctx.push(base, strict)
	defer func() {
		m := ctx.pop()
		if err == nil {
			matched = m
		}
		if ctx.Depth() == 1 && e.cleanup != nil {
			// the outermost call of this chain just finished; a cleanup
			// failure propagates but keeps the computed verdict
			if cleanupErr := e.cleanup(); cleanupErr != nil && err == nil {
				err = cleanupErr
			}
		}
		e.log.Debug("match finished",
			slog.String("matcher", e.name),
			slog.String("base", base.String()),
			slog.String("candidate", candidate.String()),
			slog.Bool("strict", strict),
			slog.Bool("matched", matched))
	}()

	err = e.dispatcher.Dispatch(candidate, e.visitorFor(ctx))
	return matched, err
}

// SetTypeArgumentResolver installs a per-instance resolver; nil restores
// resolve.Default. The swap is atomic so replacement is safe even while
// other goroutines are matching.
func (e *Engine) SetTypeArgumentResolver(resolver resolve.TypeArgumentResolver) {
	if resolver == nil {
		resolver = resolve.Default
	}
	e.resolver.Store(&resolver)
}

func (e *Engine) TypeArgumentResolver() resolve.TypeArgumentResolver {
	return *e.resolver.Load()
}
