package transform

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// TriangulatePoint reconstructs the 3D point whose projections onto two
// cameras (given by their 3x4 projection matrices) are pt1 and pt2, via the
// linear DLT/SVD method, generalizing the teacher's
// GetLinearTriangulatedPoints (rimage/transform/two_view_geom.go) to accept
// arbitrary projection matrices rather than assuming the first is identity.
func TriangulatePoint(p1, p2 *mat.Dense, pt1, pt2 r2.Point) (r3.Vector, bool) {
	a := mat.NewDense(4, 4, nil)
	setTriangulationRow(a, 0, p1, pt1.X, 2, 0)
	setTriangulationRow(a, 1, p1, pt1.Y, 2, 1)
	setTriangulationRow(a, 2, p2, pt2.X, 2, 0)
	setTriangulationRow(a, 3, p2, pt2.Y, 2, 1)

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		return r3.Vector{}, false
	}
	var v mat.Dense
	svd.VTo(&v)
	x := v.ColView(3)
	w := x.AtVec(3)
	if w == 0 {
		return r3.Vector{}, false
	}
	return r3.Vector{X: x.AtVec(0) / w, Y: x.AtVec(1) / w, Z: x.AtVec(2) / w}, true
}

// setTriangulationRow fills row i of the DLT constraint matrix with
// coord * P[wRow,:] - P[coordRow,:], the standard two-view linear
// triangulation constraint.
func setTriangulationRow(a *mat.Dense, i int, p *mat.Dense, coord float64, wRow, coordRow int) {
	for j := 0; j < 4; j++ {
		a.Set(i, j, coord*p.At(wRow, j)-p.At(coordRow, j))
	}
}

// TriangulatePoints triangulates every correspondence in pts1/pts2 given
// the two cameras' projection matrices, skipping any pair that fails.
func TriangulatePoints(p1, p2 *mat.Dense, pts1, pts2 []r2.Point) ([]r3.Vector, []int) {
	out := make([]r3.Vector, 0, len(pts1))
	idx := make([]int, 0, len(pts1))
	for i := range pts1 {
		pt, ok := TriangulatePoint(p1, p2, pts1[i], pts2[i])
		if !ok {
			continue
		}
		out = append(out, pt)
		idx = append(idx, i)
	}
	return out, idx
}
