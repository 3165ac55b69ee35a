package formula

import "fmt"

// SyntaxError is returned when a formula file fails to tokenize or parse.
// Pos is the byte offset into the input at which the problem was detected.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Msg)
}
