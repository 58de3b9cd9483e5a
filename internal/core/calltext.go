package core

import (
	"fmt"
	"strings"
)

// BuildCallText renders the anonymous block that executes a stored routine:
// "BEGIN NAME(:1, :2); END;" for procedures and "BEGIN :1 := NAME(:2); END;"
// for functions, where the return value takes the first bind position.
func BuildCallText(name string, argc int, hasReturn bool) string {
	var sb strings.Builder
	sb.WriteString("BEGIN ")
	pos := 1
	if hasReturn {
		sb.WriteString(":1 := ")
		pos = 2
	}
	sb.WriteString(name)
	sb.WriteByte('(')
	for i := 0; i < argc; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, ":%d", pos+i)
	}
	sb.WriteString("); END;")
	return sb.String()
}

// FunctionExpr renders the bind-variable fragment for calling a function
// inside a query expression, e.g. "GET_RATE(:1, :2)".
func FunctionExpr(name string, argc int) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('(')
	for i := 0; i < argc; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, ":%d", i+1)
	}
	sb.WriteByte(')')
	return sb.String()
}
