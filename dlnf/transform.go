package dlnf

import (
	"pbtlmonitor/formula"

	"golang.org/x/exp/slices"
)

// DefaultSizeLimit bounds the number of AST nodes a formula may contain
// before Transform refuses to run the (worst-case exponential)
// distribution rewrite. Override with TransformWithLimit.
const DefaultSizeLimit = 4096

// Transform rewrites n into DLNF using the default node-count guard.
func Transform(n formula.Node) (DLNF, error) {
	return TransformWithLimit(n, DefaultSizeLimit)
}

// TransformWithLimit rewrites n into DLNF, refusing formulas with more
// than limit AST nodes.
func TransformWithLimit(n formula.Node, limit int) (DLNF, error) {
	if count := countNodes(n); count > limit {
		return DLNF{}, &FormulaTooLarge{Limit: limit, Count: count}
	}

	normalized, err := nnf(n)
	if err != nil {
		return DLNF{}, err
	}

	dnf := distribute(normalized)

	disjuncts := make([]Disjunct, 0)
	for _, conjNode := range flattenOr(dnf) {
		d, ok, err := buildDisjunct(conjNode)
		if err != nil {
			return DLNF{}, err
		}
		if !ok {
			// conjunction contains FALSE: this disjunct is unsatisfiable, drop it.
			continue
		}
		disjuncts = append(disjuncts, d)
	}

	disjuncts = dedupeDisjuncts(disjuncts)
	return DLNF{Disjuncts: disjuncts}, nil
}

func countNodes(n formula.Node) int {
	switch v := n.(type) {
	case formula.True, formula.False, formula.Prop:
		return 1
	case formula.Not:
		return 1 + countNodes(v.Operand)
	case formula.And:
		return 1 + countNodes(v.Left) + countNodes(v.Right)
	case formula.Or:
		return 1 + countNodes(v.Left) + countNodes(v.Right)
	case formula.EP:
		return 1 + countNodes(v.Operand)
	default:
		return 1
	}
}

// nnf pushes negation inward through boolean connectives and through EP
// (!EP(a | b) becomes !EP(a) & !EP(b); !EP(p) stays an atom), collapsing
// idempotent nested EP and distributing EP over disjunction as it goes.
func nnf(n formula.Node) (formula.Node, error) {
	switch v := n.(type) {
	case formula.True, formula.False, formula.Prop:
		return v, nil
	case formula.Not:
		return nnfNot(v.Operand)
	case formula.And:
		l, err := nnf(v.Left)
		if err != nil {
			return nil, err
		}
		r, err := nnf(v.Right)
		if err != nil {
			return nil, err
		}
		return formula.And{Left: l, Right: r}, nil
	case formula.Or:
		l, err := nnf(v.Left)
		if err != nil {
			return nil, err
		}
		r, err := nnf(v.Right)
		if err != nil {
			return nil, err
		}
		return formula.Or{Left: l, Right: r}, nil
	case formula.EP:
		inner, err := nnf(v.Operand)
		if err != nil {
			return nil, err
		}
		return collapseEP(inner)
	default:
		return nil, &UnsupportedFormula{Formula: n, Reason: "unknown node type"}
	}
}

// nnfNot returns the NNF of Not{operand}, given the raw (not yet
// normalized) operand.
func nnfNot(operand formula.Node) (formula.Node, error) {
	o, err := nnf(operand)
	if err != nil {
		return nil, err
	}
	switch ov := o.(type) {
	case formula.True:
		return formula.False{}, nil
	case formula.False:
		return formula.True{}, nil
	case formula.Prop:
		return formula.Not{Operand: ov}, nil
	case formula.Not:
		// double negation: !!x = x, and ov.Operand is already in NNF.
		return ov.Operand, nil
	case formula.And:
		// De Morgan: !(a & b) = !a | !b
		l, err := nnfNot(ov.Left)
		if err != nil {
			return nil, err
		}
		r, err := nnfNot(ov.Right)
		if err != nil {
			return nil, err
		}
		return formula.Or{Left: l, Right: r}, nil
	case formula.Or:
		// De Morgan: !(a | b) = !a & !b
		l, err := nnfNot(ov.Left)
		if err != nil {
			return nil, err
		}
		r, err := nnfNot(ov.Right)
		if err != nil {
			return nil, err
		}
		return formula.And{Left: l, Right: r}, nil
	case formula.EP:
		return negateEP(ov)
	default:
		return nil, &UnsupportedFormula{Formula: operand, Reason: "unknown node type under negation"}
	}
}

// negateEP computes !EP(x) given an already-collapsed EP{x} node: atomic
// if x is a literal, otherwise rewritten through the EP-over-disjunction
// identity; a conjunction body that is not itself reducible is not
// representable in DLNF.
func negateEP(ep formula.EP) (formula.Node, error) {
	switch inner := ep.Operand.(type) {
	case formula.Prop:
		return formula.Not{Operand: ep}, nil
	case formula.Or:
		l, err := negateEP(formula.EP{Operand: inner.Left})
		if err != nil {
			return nil, err
		}
		r, err := negateEP(formula.EP{Operand: inner.Right})
		if err != nil {
			return nil, err
		}
		return formula.And{Left: l, Right: r}, nil
	case formula.And:
		return nil, &UnsupportedFormula{
			Formula: formula.Not{Operand: ep},
			Reason:  "!EP(conjunction) does not reduce to a DLNF literal; EP does not distribute over &",
		}
	case formula.True:
		return formula.False{}, nil
	case formula.False:
		return formula.True{}, nil
	default:
		return nil, &UnsupportedFormula{Formula: formula.Not{Operand: ep}, Reason: "EP operand is not reducible to literals"}
	}
}

// collapseEP normalizes the (already nnf'd) operand of an EP node:
// strips idempotent nested EP chains (EP(EP(x)) = EP(x)), distributes EP
// over disjunction, and either wraps a literal/literal-conjunction atom
// in EP or rejects formulas whose EP argument cannot be reduced.
func collapseEP(operand formula.Node) (formula.Node, error) {
	cur := operand
	for {
		if e, ok := cur.(formula.EP); ok {
			cur = e.Operand
			continue
		}
		break
	}

	switch c := cur.(type) {
	case formula.True:
		return formula.True{}, nil
	case formula.False:
		return formula.False{}, nil
	case formula.Or:
		l, err := collapseEP(c.Left)
		if err != nil {
			return nil, err
		}
		r, err := collapseEP(c.Right)
		if err != nil {
			return nil, err
		}
		return formula.Or{Left: l, Right: r}, nil
	case formula.And:
		for _, conjunct := range flattenAnd(c) {
			if !isLiteralShape(conjunct) {
				return nil, &UnsupportedFormula{
					Formula: formula.EP{Operand: operand},
					Reason:  "EP(conjunction) requires every conjunct to already be a literal",
				}
			}
		}
		return formula.EP{Operand: c}, nil
	case formula.Prop:
		return formula.EP{Operand: c}, nil
	default:
		return nil, &UnsupportedFormula{Formula: formula.EP{Operand: operand}, Reason: "EP operand is not reducible to literals"}
	}
}

func isLiteralShape(n formula.Node) bool {
	switch v := n.(type) {
	case formula.Prop, formula.True, formula.False:
		return true
	case formula.Not:
		switch inner := v.Operand.(type) {
		case formula.Prop:
			return true
		case formula.EP:
			_, ok := inner.Operand.(formula.Prop)
			return ok
		default:
			return false
		}
	case formula.EP:
		_, ok := v.Operand.(formula.Prop)
		return ok
	default:
		return false
	}
}

func flattenAnd(n formula.Node) []formula.Node {
	a, ok := n.(formula.And)
	if !ok {
		return []formula.Node{n}
	}
	return append(flattenAnd(a.Left), flattenAnd(a.Right)...)
}

func flattenOr(n formula.Node) []formula.Node {
	o, ok := n.(formula.Or)
	if !ok {
		return []formula.Node{n}
	}
	return append(flattenOr(o.Left), flattenOr(o.Right)...)
}

// distribute pushes & inward over | until the tree is a disjunction of
// conjunctions of literal-shape leaves (rule 3).
func distribute(n formula.Node) formula.Node {
	switch v := n.(type) {
	case formula.And:
		return distributeAnd(distribute(v.Left), distribute(v.Right))
	case formula.Or:
		return formula.Or{Left: distribute(v.Left), Right: distribute(v.Right)}
	default:
		return v
	}
}

func distributeAnd(l, r formula.Node) formula.Node {
	if lo, ok := l.(formula.Or); ok {
		return formula.Or{Left: distributeAnd(lo.Left, r), Right: distributeAnd(lo.Right, r)}
	}
	if ro, ok := r.(formula.Or); ok {
		return formula.Or{Left: distributeAnd(l, ro.Left), Right: distributeAnd(l, ro.Right)}
	}
	return formula.And{Left: l, Right: r}
}

// buildDisjunct flattens one DNF conjunction into a Disjunct, unwrapping
// any EP(conjunction-of-literals) atom into its own conjuncts — evaluating
// "exists a frontier where P1 & P2 & ... held" is exactly what the
// evaluator's existential search over the frontier set already provides,
// so the outer EP carries no extra meaning once its body is itself a
// conjunction of literals.
// The second return value is false if the conjunction contains FALSE and
// is therefore unsatisfiable.
func buildDisjunct(n formula.Node) (Disjunct, bool, error) {
	var literals []formula.Node
	for _, conjunct := range flattenAnd(n) {
		switch v := conjunct.(type) {
		case formula.True:
			continue
		case formula.False:
			return nil, false, nil
		case formula.EP:
			if and, ok := v.Operand.(formula.And); ok {
				literals = append(literals, flattenAnd(and)...)
				continue
			}
			literals = append(literals, v)
		default:
			literals = append(literals, v)
		}
	}

	out := make(Disjunct, 0, len(literals))
	for _, l := range literals {
		lit, err := classify(l)
		if err != nil {
			return nil, false, err
		}
		out = append(out, lit)
	}
	return dedupeLiterals(out), true, nil
}

func classify(n formula.Node) (Literal, error) {
	switch v := n.(type) {
	case formula.Prop:
		return Literal{Kind: M, Prop: v.Name}, nil
	case formula.EP:
		p, ok := v.Operand.(formula.Prop)
		if !ok {
			return Literal{}, &UnsupportedFormula{Formula: n, Reason: "EP must wrap a bare proposition in DLNF"}
		}
		return Literal{Kind: P, Prop: p.Name}, nil
	case formula.Not:
		switch inner := v.Operand.(type) {
		case formula.Prop:
			return Literal{Kind: NotM, Prop: inner.Name}, nil
		case formula.EP:
			p, ok := inner.Operand.(formula.Prop)
			if !ok {
				return Literal{}, &UnsupportedFormula{Formula: n, Reason: "!EP must wrap a bare proposition in DLNF"}
			}
			return Literal{Kind: N, Prop: p.Name}, nil
		default:
			return Literal{}, &UnsupportedFormula{Formula: n, Reason: "not a DLNF literal"}
		}
	default:
		return Literal{}, &UnsupportedFormula{Formula: n, Reason: "not a DLNF literal"}
	}
}

func dedupeLiterals(lits Disjunct) Disjunct {
	out := make(Disjunct, 0, len(lits))
	for _, l := range lits {
		if !slices.ContainsFunc(out, func(o Literal) bool { return o.Equal(l) }) {
			out = append(out, l)
		}
	}
	return out
}

func dedupeDisjuncts(ds []Disjunct) []Disjunct {
	out := make([]Disjunct, 0, len(ds))
	for _, d := range ds {
		if !slices.ContainsFunc(out, func(o Disjunct) bool { return equalDisjunct(o, d) }) {
			out = append(out, d)
		}
	}
	return out
}

func equalDisjunct(a, b Disjunct) bool {
	if len(a) != len(b) {
		return false
	}
	for _, l := range a {
		if !slices.ContainsFunc(b, func(o Literal) bool { return o.Equal(l) }) {
			return false
		}
	}
	return true
}
