// Package statsprint renders arcmotion.Stats as a colored table, the
// way cmd/surge prints stage timings.
package statsprint

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"codemotion/internal/arcmotion"
)

var (
	labelColor = color.New(color.FgCyan)
	valueColor = color.New(color.FgGreen, color.Bold)
	zeroColor  = color.New(color.FgHiBlack)
)

// Print writes s as a three-row table to out. useColor forces ANSI
// codes on or off regardless of out's terminal-ness, since callers
// already resolved --color/isTerminal before calling in.
func Print(out io.Writer, s arcmotion.Stats, useColor bool) {
	color.NoColor = !useColor

	row(out, "sunk", s.NumSunk)
	row(out, "hoisted", s.NumHoisted)
	row(out, "rc ops simplified", s.NumRefCountOpsSimplified)
}

func row(out io.Writer, label string, n int) {
	valColor := valueColor
	if n == 0 {
		valColor = zeroColor
	}
	fmt.Fprintf(out, "  %-20s %s\n", labelColor.Sprint(label), valColor.Sprint(n))
}
