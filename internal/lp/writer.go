package lp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const termsPerLine = 8

// WriteLP writes the problem in CPLEX LP format, the format CBC reads.
func (p *Problem) WriteLP(w io.Writer) error {
	bw := bufio.NewWriter(w)
	name := p.Name
	if name == "" {
		name = "model"
	}
	fmt.Fprintf(bw, "\\* %s *\\\n\n", SanitizeName(name))

	bw.WriteString("min\nobj:")
	var obj []Term
	for i, c := range p.Columns {
		if c.Cost != 0 {
			obj = append(obj, Term{Col: i, Coef: c.Cost})
		}
	}
	if len(obj) == 0 && len(p.Columns) > 0 {
		obj = []Term{{Col: 0, Coef: 0}}
	}
	p.writeTerms(bw, obj)
	bw.WriteString("\n\ns.t.\n")

	for i, r := range p.Rows {
		rowName := r.Name
		if rowName == "" {
			rowName = "r" + strconv.Itoa(i)
		}
		fmt.Fprintf(bw, "%s:", SanitizeName(rowName))
		terms := r.Terms
		if len(terms) == 0 {
			// CPLEX LP rejects empty rows; 0 x0 keeps the row and its name.
			terms = []Term{{Col: 0, Coef: 0}}
		}
		p.writeTerms(bw, terms)
		fmt.Fprintf(bw, " %s %s\n", r.Sense, num(r.RHS))
	}

	bw.WriteString("\nbounds\n")
	for _, c := range p.Columns {
		n := SanitizeName(c.Name)
		switch {
		case c.Lower == c.Upper:
			fmt.Fprintf(bw, " %s = %s\n", n, num(c.Lower))
		case math.IsInf(c.Lower, -1) && math.IsInf(c.Upper, 1):
			fmt.Fprintf(bw, " %s free\n", n)
		case c.Lower == 0 && math.IsInf(c.Upper, 1):
			// default bounds
		case math.IsInf(c.Upper, 1):
			fmt.Fprintf(bw, " %s >= %s\n", n, num(c.Lower))
		default:
			fmt.Fprintf(bw, " %s <= %s <= %s\n", bound(c.Lower), n, num(c.Upper))
		}
	}
	bw.WriteString("end\n")
	return bw.Flush()
}

func (p *Problem) writeTerms(bw *bufio.Writer, terms []Term) {
	for i, t := range terms {
		if i > 0 && i%termsPerLine == 0 {
			bw.WriteString("\n ")
		}
		sign := "+"
		coef := t.Coef
		if coef < 0 {
			sign = "-"
			coef = -coef
		}
		fmt.Fprintf(bw, " %s%s %s", sign, num(coef), SanitizeName(p.Columns[t.Col].Name))
	}
}

func num(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func bound(v float64) string {
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return num(v)
}

// SanitizeName maps a name to the CPLEX LP identifier alphabet.
func SanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case strings.ContainsRune("_().,", r):
			return r
		}
		return '_'
	}, s)
}
