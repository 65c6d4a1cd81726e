package milp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadSolution parses solver output into name→value pairs. Two line layouts
// are understood:
//
//	<name> <value>
//	<index> <name> <value> [<reduced cost>]
//
// The second is the CBC solution layout; its "**" infeasibility marker and
// the status header line are skipped. Blank lines and lines starting with
// '#' or '\' are ignored.
func ReadSolution(r io.Reader) (map[string]float64, error) {
	values := make(map[string]float64)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || s[0] == '#' || s[0] == '\\' {
			continue
		}
		s = strings.TrimSpace(strings.TrimPrefix(s, "**"))
		f := strings.Fields(s)

		var name, raw string
		switch {
		case len(f) >= 3 && isInt(f[0]):
			name, raw = f[1], f[2]
		case len(f) == 2:
			name, raw = f[0], f[1]
		default:
			// status header, e.g. "Optimal - objective value 12.5"
			continue
		}
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("solution line %d: value of %s: %w", line, name, err)
		}
		values[name] = x
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read solution: %w", err)
	}
	return values, nil
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// PointFromSolution builds a column vector from parsed solver values,
// auxiliary columns included. Columns absent from values are zero.
func (l *Lowered) PointFromSolution(values map[string]float64) []float64 {
	x := make([]float64, len(l.Vars))
	for i, v := range l.Vars {
		val, ok := values[v.name]
		if !ok {
			val = values[LPName(v.name)]
		}
		x[i] = val
	}
	return x
}
