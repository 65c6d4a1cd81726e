package milp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
)

const lpTermsPerLine = 8

// LPName maps a qualified name onto the character set accepted by the CPLEX
// LP format. Names may not start with a digit or a period.
func LPName(name string) string {
	var sb strings.Builder
	sb.Grow(len(name) + 1)
	for i, r := range name {
		if i == 0 && (r == '.' || (r >= '0' && r <= '9')) {
			sb.WriteByte('_')
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case strings.ContainsRune("!\"#$%&()/,.;?@_`'{}|~", r):
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// WriteLP writes the lowered model in CPLEX LP format, the hand-off format
// for the external solver. It fails before writing anything if two columns
// or two rows share a sanitized name.
func WriteLP(w io.Writer, l *Lowered) error {
	names := make([]string, len(l.Vars))
	cols := make(map[string]string, len(l.Vars))
	for i, v := range l.Vars {
		names[i] = LPName(v.name)
		if other, dup := cols[names[i]]; dup {
			return fmt.Errorf("milp: columns %q and %q share LP name %q", other, v.name, names[i])
		}
		cols[names[i]] = v.name
	}
	rows := make(map[string]string, len(l.Rows))
	for _, r := range l.Rows {
		n := LPName(r.Name)
		if other, dup := rows[n]; dup {
			return fmt.Errorf("milp: rows %q and %q share LP name %q", other, r.Name, n)
		}
		rows[n] = r.Name
	}

	bw := bufio.NewWriter(w)

	bw.WriteString("\\ energyhub technology model\n")
	bw.WriteString("Minimize\n obj:")
	switch {
	case len(l.Objective.Cols) > 0:
		writeTerms(bw, l.Objective, names)
	case len(names) > 0:
		bw.WriteString(" 0 ")
		bw.WriteString(names[0])
	}
	bw.WriteString("\nSubject To\n")
	for _, r := range l.Rows {
		bw.WriteString(" ")
		bw.WriteString(LPName(r.Name))
		bw.WriteString(":")
		writeTerms(bw, r, names)
		bw.WriteString(" ")
		bw.WriteString(r.Sense.String())
		bw.WriteString(" ")
		bw.WriteString(formatFloat(r.RHS))
		bw.WriteString("\n")
	}

	bw.WriteString("Bounds\n")
	for i, v := range l.Vars {
		if v.domain == Binary && v.lower == 0 && v.upper == 1 {
			continue
		}
		bw.WriteString(" ")
		bw.WriteString(boundLine(names[i], v.lower, v.upper))
		bw.WriteString("\n")
	}

	writeSection(bw, "Generals", l.Vars, names, Integer)
	writeSection(bw, "Binaries", l.Vars, names, Binary)
	bw.WriteString("End\n")
	return bw.Flush()
}

func writeTerms(bw *bufio.Writer, r Row, names []string) {
	for k, i := range r.Cols {
		if k > 0 && k%lpTermsPerLine == 0 {
			bw.WriteString("\n   ")
		}
		c := r.Coefs[k]
		if c < 0 {
			bw.WriteString(" - ")
			c = -c
		} else {
			bw.WriteString(" + ")
		}
		bw.WriteString(formatFloat(c))
		bw.WriteString(" ")
		bw.WriteString(names[i])
	}
}

func boundLine(name string, lo, hi float64) string {
	switch {
	case lo == hi:
		return name + " = " + formatFloat(lo)
	case math.IsInf(lo, -1) && math.IsInf(hi, 1):
		return name + " free"
	case math.IsInf(lo, -1):
		return "-inf <= " + name + " <= " + formatFloat(hi)
	case math.IsInf(hi, 1):
		return name + " >= " + formatFloat(lo)
	default:
		return formatFloat(lo) + " <= " + name + " <= " + formatFloat(hi)
	}
}

func writeSection(bw *bufio.Writer, title string, vars []*Var, names []string, d Domain) {
	var cols []string
	for i, v := range vars {
		if v.domain == d {
			cols = append(cols, names[i])
		}
	}
	if len(cols) == 0 {
		return
	}
	bw.WriteString(title)
	bw.WriteString("\n")
	for _, n := range cols {
		bw.WriteString(" ")
		bw.WriteString(n)
		bw.WriteString("\n")
	}
}
