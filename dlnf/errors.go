package dlnf

import (
	"fmt"

	"pbtlmonitor/formula"
)

// UnsupportedFormula is returned when a formula's EP arguments do not
// reduce to a finite disjunction of conjunctions over literals and/or
// EP-wrapped literals.
type UnsupportedFormula struct {
	Formula formula.Node
	Reason  string
}

func (e *UnsupportedFormula) Error() string {
	return fmt.Sprintf("unsupported formula %q: %s", e.Formula, e.Reason)
}

// FormulaTooLarge is returned when the input formula has more AST nodes
// than the configured node-count guard. The guard is checked on the input
// before the distribute-to-DNF rewrite runs: that rewrite can blow up
// exponentially, so the input size is what gets bounded, and the size of
// the rewrite's output is not checked.
type FormulaTooLarge struct {
	Limit int
	Count int
}

func (e *FormulaTooLarge) Error() string {
	return fmt.Sprintf("formula exceeds size limit: %d nodes (limit %d)", e.Count, e.Limit)
}
