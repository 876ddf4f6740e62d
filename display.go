package actinide

import (
	"fmt"
	"strings"
)

// Display renders a value as re-readable Actinide syntax: strings are
// quoted and escaped so that reading Display's output back reproduces an
// equal value, per spec.md §8's round-trip property.
func Display(v Value) string {
	switch x := v.(type) {
	case bool:
		if x {
			return "#t"
		}
		return "#f"
	case string:
		return displayString(x)
	case *Symbol:
		return x.text
	case *Integer:
		return x.Num.String()
	case *Decimal:
		return x.String()
	case *Cons:
		if x == nil {
			return "()"
		}
		return displayCons(x)
	case *Vector:
		parts := make([]string, x.Len())
		for i, item := range x.items {
			parts[i] = Display(item)
		}
		return "#(" + strings.Join(parts, " ") + ")"
	case *UserProcedure:
		name := x.Name
		if name == "" {
			name = "anonymous"
		}
		return fmt.Sprintf("#<procedure:%s>", name)
	case *Builtin:
		return fmt.Sprintf("#<builtin:%s>", x.Name)
	case Port:
		return "#<port>"
	default:
		return fmt.Sprintf("%v", x)
	}
}

func displayString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return "\"" + s + "\""
}

func displayCons(c *Cons) string {
	var parts []string
	var cur Value = c
	for {
		cell, ok := cur.(*Cons)
		if !ok || cell == nil {
			break
		}
		parts = append(parts, Display(cell.Car))
		cur = cell.Cdr
	}
	if !nilP(cur) {
		parts = append(parts, ".", Display(cur))
	}
	return "(" + strings.Join(parts, " ") + ")"
}
