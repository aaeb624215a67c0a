// Package decoration projects parsed annotations onto editor decorations
// and owns the registry of decoration handles.
//
// Each annotation is drawn with two decorations: a hidden one covering the
// boilerplate before and after the expression, and a highlighted one
// covering the padded expression text.
package decoration

import (
	"github.com/dshills/compactlog/internal/annotation"
	"github.com/dshills/compactlog/internal/textrange"
)

// Projection is the decoration geometry of one annotation.
type Projection struct {
	// Hide holds the non-empty boilerplate ranges, prefix first.
	Hide []textrange.Range

	// Highlight covers the padded expression text.
	Highlight textrange.Range
}

// Project computes the projection of an annotation.
func Project(a annotation.Annotation) Projection {
	return Projection{
		Hide:      textrange.Complement(a.FullRange, a.VarRange),
		Highlight: a.VarRange,
	}
}

// Equal reports whether two projections have the same geometry.
func (p Projection) Equal(other Projection) bool {
	if p.Highlight != other.Highlight || len(p.Hide) != len(other.Hide) {
		return false
	}
	for i := range p.Hide {
		if p.Hide[i] != other.Hide[i] {
			return false
		}
	}
	return true
}
