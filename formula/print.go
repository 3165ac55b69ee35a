package formula

// Print renders n back into the concrete syntax accepted by Parse. It is
// the counterpart to Parse used by the parser round-trip property: for
// every formula phi, Parse(Print(AST-of(phi))) is structurally equal to
// AST-of(phi).
func Print(n Node) string {
	return n.String()
}
