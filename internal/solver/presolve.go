package solver

import (
	"math"

	"energy-expansion/internal/lp"

	"gonum.org/v1/gonum/floats"
)

const (
	// Coefficients below zeroTol are dropped.
	zeroTol = 1e-12
	// Bounds closer than boundTol (relative) are treated as equal.
	boundTol = 1e-9
	// An equality row whose component orthogonal to the earlier rows is below
	// depTol times its norm is linearly dependent.
	depTol = 1e-9
)

// reducedRow is a row of the presolved problem. orig indexes Problem.Rows.
type reducedRow struct {
	orig  int
	sense lp.Sense
	rhs   float64
	terms []lp.Term
}

// reduced is a problem after presolve. Columns with lower == upper are fixed
// and no longer appear in rows.
type reduced struct {
	lower []float64
	upper []float64
	rows  []reducedRow
	// original rows removed as linear combinations of kept rows
	dropped    []int
	infeasible bool
}

func (r *reduced) fixed(j int) bool { return r.lower[j] == r.upper[j] }

// presolve folds single-column rows into column bounds until nothing
// changes. Fixed columns are substituted into the remaining rows, and rows
// left without columns are checked and removed.
func presolve(p *lp.Problem) *reduced {
	r := &reduced{
		lower: make([]float64, len(p.Columns)),
		upper: make([]float64, len(p.Columns)),
	}
	for j, c := range p.Columns {
		r.lower[j], r.upper[j] = c.Lower, c.Upper
	}

	rows := make([]reducedRow, 0, len(p.Rows))
	for i, row := range p.Rows {
		terms := make([]lp.Term, 0, len(row.Terms))
		for _, t := range row.Terms {
			if math.Abs(t.Coef) > zeroTol {
				terms = append(terms, t)
			}
		}
		rows = append(rows, reducedRow{orig: i, sense: row.Sense, rhs: row.RHS, terms: terms})
	}

	for changed := true; changed; {
		changed = false
		kept := rows[:0]
		for _, row := range rows {
			row = r.substitute(row)
			switch len(row.terms) {
			case 0:
				if !constantRowHolds(row.sense, row.rhs) {
					r.infeasible = true
					return r
				}
			case 1:
				if !r.tighten(row) {
					r.infeasible = true
					return r
				}
				changed = true
			default:
				kept = append(kept, row)
			}
		}
		rows = kept
	}
	r.rows = rows
	return r
}

func (r *reduced) substitute(row reducedRow) reducedRow {
	terms := row.terms[:0]
	for _, t := range row.terms {
		if r.fixed(t.Col) {
			row.rhs -= t.Coef * r.lower[t.Col]
			continue
		}
		terms = append(terms, t)
	}
	row.terms = terms
	return row
}

// tighten turns a single-column row into a bound. It reports false when the
// bounds of the column cross.
func (r *reduced) tighten(row reducedRow) bool {
	t := row.terms[0]
	j := t.Col
	v := row.rhs / t.Coef
	lo, up := r.lower[j], r.upper[j]
	switch {
	case row.sense == lp.EQ:
		lo, up = math.Max(lo, v), math.Min(up, v)
	case (row.sense == lp.LE) == (t.Coef > 0):
		up = math.Min(up, v)
	default:
		lo = math.Max(lo, v)
	}
	if up-lo <= boundTol*(1+math.Abs(lo)) {
		if lo-up > boundTol*(1+math.Abs(lo)) {
			return false
		}
		up = lo
	}
	r.lower[j], r.upper[j] = lo, up
	return true
}

// dropDependent removes equality rows that are linear combinations of
// earlier equality rows (modified Gram-Schmidt, orthogonalised twice).
// Inequality rows get their own slack column and are independent of every
// other row, and an equality row cannot depend on them.
func (r *reduced) dropDependent() {
	index := map[int]int{}
	for _, row := range r.rows {
		if row.sense != lp.EQ {
			continue
		}
		for _, t := range row.terms {
			if _, ok := index[t.Col]; !ok {
				index[t.Col] = len(index)
			}
		}
	}

	var basis [][]float64
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.sense != lp.EQ {
			kept = append(kept, row)
			continue
		}
		v := make([]float64, len(index))
		for _, t := range row.terms {
			v[index[t.Col]] += t.Coef
		}
		norm := floats.Norm(v, 2)
		for pass := 0; pass < 2; pass++ {
			for _, q := range basis {
				floats.AddScaled(v, -floats.Dot(q, v), q)
			}
		}
		rest := floats.Norm(v, 2)
		if rest <= depTol*norm {
			r.dropped = append(r.dropped, row.orig)
			continue
		}
		floats.Scale(1/rest, v)
		basis = append(basis, v)
		kept = append(kept, row)
	}
	r.rows = kept
}

func constantRowHolds(sense lp.Sense, rhs float64) bool {
	const eps = 1e-9
	switch sense {
	case lp.LE:
		return rhs >= -eps
	case lp.GE:
		return rhs <= eps
	default:
		return math.Abs(rhs) <= eps
	}
}
