package tree

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/assetfix/pkg/types"
)

// Report summarizes an integrity check.
type Report struct {
	Nodes    int      // Rows in the table.
	Attached int      // Rows reachable through the bounds, root included.
	Detached int      // Rows stored without a parent.
	Issues   []string // One line per violation; empty when the tree is sound.
}

// OK reports whether the check found no violation.
func (r Report) OK() bool {
	return len(r.Issues) == 0
}

func (r *Report) addf(format string, args ...any) {
	r.Issues = append(r.Issues, fmt.Sprintf(format, args...))
}

// Check loads the whole table and verifies the nested-set invariants. It
// returns ErrTreeCorrupt when the report lists any issue.
func (t *Table) Check(ctx context.Context) (Report, error) {
	assets, err := t.All(ctx)
	if err != nil {
		return Report{}, err
	}
	report := Validate(assets)
	if !report.OK() {
		return report, fmt.Errorf("%w: %d issues", types.ErrTreeCorrupt, len(report.Issues))
	}
	return report, nil
}

// Validate verifies the nested-set invariants over assets, which must be
// ordered by lft.
func Validate(assets []types.Asset) Report {
	report := Report{Nodes: len(assets)}

	names := make(map[string]int64, len(assets))
	for _, a := range assets {
		if other, dup := names[a.Name]; dup {
			report.addf("name %q used by assets %d and %d", a.Name, other, a.ID)
			continue
		}
		names[a.Name] = a.ID
	}

	var (
		stack          []*types.Asset
		bounds         = make(map[int64]int64)
		minLft, maxRgt int64
	)
	for i := range assets {
		a := &assets[i]
		if a.Detached() {
			report.Detached++
			if a.Lft != 0 || a.Rgt != 0 || a.Level != 0 {
				report.addf("detached asset %d has bounds %d-%d level %d", a.ID, a.Lft, a.Rgt, a.Level)
			}
			continue
		}
		if report.Attached == 0 {
			minLft, maxRgt = a.Lft, a.Rgt
		}
		report.Attached++
		minLft, maxRgt = min(minLft, a.Lft), max(maxRgt, a.Rgt)

		if a.Lft >= a.Rgt {
			report.addf("asset %d has lft %d not below rgt %d", a.ID, a.Lft, a.Rgt)
		}
		for _, b := range []int64{a.Lft, a.Rgt} {
			if other, dup := bounds[b]; dup {
				report.addf("bound %d shared by assets %d and %d", b, other, a.ID)
			}
			bounds[b] = a.ID
		}

		for len(stack) > 0 && stack[len(stack)-1].Rgt < a.Lft {
			stack = stack[:len(stack)-1]
		}

		var wantParent int64
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			wantParent = top.ID
			if a.Rgt > top.Rgt {
				report.addf("asset %d (%d-%d) overlaps asset %d (%d-%d)", a.ID, a.Lft, a.Rgt, top.ID, top.Lft, top.Rgt)
			}
		}
		if a.ParentID != wantParent {
			report.addf("asset %d has parent_id %d, enclosed by %d", a.ID, a.ParentID, wantParent)
		}
		if a.Level != len(stack) {
			report.addf("asset %d has level %d at depth %d", a.ID, a.Level, len(stack))
		}
		stack = append(stack, a)
	}

	if report.Attached > 0 {
		span := maxRgt - minLft + 1
		if span%2 != 0 || span/2 != int64(report.Attached) {
			report.addf("bounds %d-%d do not fit %d attached assets", minLft, maxRgt, report.Attached)
		}
	}
	return report
}
