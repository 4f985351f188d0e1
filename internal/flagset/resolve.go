package flagset

import (
	"context"
	"fmt"
	"strings"

	"github.com/gaze-network/uint128"
	"github.com/samber/lo"

	"flagger/internal/diag"
	"flagger/internal/trace"
)

// Options tune resolution output.
type Options struct {
	// MinWidth raises the floor of width selection. Zero means 8.
	MinWidth Width
}

// Resolve computes every discriminant of def by fixpoint iteration and
// selects the backing width.
//
// Each pass walks the still-unresolved declarations in order and evaluates
// them against what is already resolved. A pass that resolves nothing ends
// the loop; any leftover is reported as ErrUnresolvedDiscriminant naming the
// first one in declaration order.
func Resolve(ctx context.Context, def *Definition, opts Options) (*FlagSet, error) {
	ctx, span := trace.BeginCtx(ctx, trace.ScopeSet, "resolve:"+def.Name)
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	resolved := make(map[string]uint128.Uint128, len(def.Decls))
	unresolved := make([]*Declaration, len(def.Decls))
	for i := range def.Decls {
		unresolved[i] = &def.Decls[i]
	}

	for pass := 1; len(unresolved) > 0; pass++ {
		passSpan := trace.Begin(tracer, trace.ScopeSet, fmt.Sprintf("pass %d", pass), parent)
		left := unresolved[:0:0]
		for _, d := range unresolved {
			if v, ok := eval(d.Expr, resolved); ok {
				resolved[d.Name] = v
				continue
			}
			left = append(left, d)
		}
		progress := len(unresolved) - len(left)
		passSpan.WithExtra("resolved", fmt.Sprint(progress)).
			WithExtra("left", fmt.Sprint(len(left))).
			End("")
		unresolved = left
		if progress == 0 {
			break
		}
	}

	if len(unresolved) > 0 {
		span.End("unresolved")
		return nil, unresolvedError(def, unresolved, resolved)
	}

	flags := make([]ResolvedFlag, len(def.Decls))
	maxBit, holder := 0, -1
	for i, d := range def.Decls {
		v := resolved[d.Name]
		flags[i] = ResolvedFlag{Name: d.Name, Value: v, Span: d.Span, Doc: d.Doc}
		if n := BitLen(v); n > maxBit {
			maxBit, holder = n, i
		}
	}

	floor := opts.MinWidth
	if floor == 0 {
		floor = Width8
	}
	width, ok := SelectWidth(maxBit, floor)
	if !ok {
		d := def.Decls[holder]
		span.End("oversized")
		return nil, newError(ErrOversizedFlagSet, def.Name, d.Name, d.NameSpan,
			fmt.Sprintf("flag set `%s` needs %d bits; the widest backing is 128", def.Name, maxBit),
			diag.Note{Span: d.Span, Msg: fmt.Sprintf("`%s` sets bit %d", d.Name, maxBit-1)})
	}

	span.WithExtra("width", width.String()).End("")
	return newFlagSet(def, flags, width, maxBit), nil
}

func eval(e *Expr, resolved map[string]uint128.Uint128) (uint128.Uint128, bool) {
	switch e.Kind {
	case ExprLiteral:
		return e.Value, true
	case ExprReference:
		v, ok := resolved[e.Name]
		return v, ok
	case ExprBinary:
		l, ok := eval(e.Left, resolved)
		if !ok {
			return uint128.Zero, false
		}
		r, ok := eval(e.Right, resolved)
		if !ok {
			return uint128.Zero, false
		}
		return e.Op.Apply(l, r), true
	default:
		return uint128.Zero, false
	}
}

// unresolvedError explains why the first leftover is stuck.
func unresolvedError(def *Definition, left []*Declaration, resolved map[string]uint128.Uint128) error {
	first := left[0]
	declared := lo.SliceToMap(def.Decls, func(d Declaration) (string, bool) { return d.Name, true })
	pending := lo.SliceToMap(left, func(d *Declaration) (string, *Declaration) { return d.Name, d })

	var notes []diag.Note
	if first.Expr.Kind == ExprImplicit {
		notes = append(notes, diag.Note{
			Span: first.NameSpan,
			Msg:  fmt.Sprintf("implicit discriminants are not supported; give `%s` an explicit value", first.Name),
		})
	}

	var blockers []string
	for _, ref := range first.Expr.References() {
		if _, ok := resolved[ref.Name]; ok {
			continue
		}
		if !declared[ref.Name] {
			notes = append(notes, diag.Note{
				Span: ref.Span,
				Msg:  fmt.Sprintf("`%s` is not declared in `%s`", ref.Name, def.Name),
			})
			continue
		}
		if !lo.Contains(blockers, ref.Name) {
			blockers = append(blockers, ref.Name)
		}
	}

	if cycle := findCycle(first, pending); len(cycle) > 0 {
		notes = append(notes, diag.Note{
			Span: first.NameSpan,
			Msg:  "cycle: " + strings.Join(cycle, " -> "),
		})
	} else {
		for _, b := range blockers {
			notes = append(notes, diag.Note{
				Span: pending[b].NameSpan,
				Msg:  fmt.Sprintf("`%s` depends on `%s` which is also unresolved", first.Name, b),
			})
		}
	}

	return newError(ErrUnresolvedDiscriminant, def.Name, first.Name, first.NameSpan,
		fmt.Sprintf("cannot resolve discriminant of `%s::%s`", def.Name, first.Name),
		notes...)
}

// findCycle looks for a path of unresolved references from start back to
// itself and returns it as names, start repeated at the end.
func findCycle(start *Declaration, pending map[string]*Declaration) []string {
	visited := make(map[string]bool, len(pending))
	var path []string

	var dfs func(d *Declaration) bool
	dfs = func(d *Declaration) bool {
		path = append(path, d.Name)
		for _, ref := range d.Expr.References() {
			if ref.Name == start.Name {
				path = append(path, start.Name)
				return true
			}
			next, ok := pending[ref.Name]
			if !ok || visited[ref.Name] {
				continue
			}
			visited[ref.Name] = true
			if dfs(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}

	visited[start.Name] = true
	if dfs(start) {
		return path
	}
	return nil
}
