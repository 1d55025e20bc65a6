package mesh

import (
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// FaceGeometry computes the centroid and area vector of every polygonal
// face. Each polygon is decomposed into a triangle fan around the mean of
// its vertices; the centroid is the area-weighted mean of the triangle
// centroids, which is exact for planar faces of any shape.
func FaceGeometry(points [][3]float64, faces [][]int) (centers, areas [][3]float64) {
	centers = make([][3]float64, len(faces))
	areas = make([][3]float64, len(faces))
	for fi, face := range faces {
		if len(face) == 3 {
			a, b, c := points[face[0]], points[face[1]], points[face[2]]
			areas[fi] = scale(cross(sub(b, a), sub(c, a)), 0.5)
			centers[fi] = scale(add(add(a, b), c), 1.0/3.0)
			continue
		}
		var mean [3]float64
		for _, p := range face {
			mean = add(mean, points[p])
		}
		mean = scale(mean, 1/float64(len(face)))

		var (
			sumArea [3]float64
			sumMagC [3]float64
			sumMag  float64
		)
		for i := range face {
			a := points[face[i]]
			b := points[face[(i+1)%len(face)]]
			triArea := scale(cross(sub(a, mean), sub(b, mean)), 0.5)
			triMag := norm(triArea)
			triCtr := scale(add(add(a, b), mean), 1.0/3.0)
			sumArea = add(sumArea, triArea)
			sumMagC = add(sumMagC, scale(triCtr, triMag))
			sumMag += triMag
		}
		areas[fi] = sumArea
		if sumMag > 0 {
			centers[fi] = scale(sumMagC, 1/sumMag)
		} else {
			centers[fi] = mean
		}
	}
	return centers, areas
}

// CellVolumes computes cell volumes from face geometry by the divergence
// theorem: V_c = (1/3) Σ_f ±(C_f · S_f), positive for owned faces whose
// area vector points out of the cell, negative on the neighbour side. The
// signed face-to-cell incidence is genuinely sparse (each face touches at
// most two cells), so the accumulation is one CSR matrix-vector product.
func CellVolumes(nCells int, centers, areas [][3]float64, owner, neighbour []int) []float64 {
	nFaces := len(areas)
	if nCells == 0 || nFaces == 0 {
		return nil
	}
	flux := make([]float64, nFaces)
	for f := 0; f < nFaces; f++ {
		flux[f] = dot(centers[f], areas[f])
	}
	incidence := sparse.NewDOK(nCells, nFaces)
	for f, c := range owner {
		incidence.Set(c, f, 1.0/3.0)
	}
	for f, c := range neighbour {
		incidence.Set(c, f, -1.0/3.0)
	}
	vols := mat.NewVecDense(nCells, nil)
	vols.MulVec(incidence.ToCSR(), mat.NewVecDense(nFaces, flux))
	return vols.RawVector().Data
}

// FaceAreaMagnitudes returns |S_f| for a face range.
func FaceAreaMagnitudes(areas [][3]float64) []float64 {
	out := make([]float64, len(areas))
	for i, a := range areas {
		out[i] = norm(a)
	}
	return out
}

// LumpPointWeights distributes each element's measure equally over its
// points, producing the lumped weights used to integrate point-located
// data. elements lists the point labels of each element; np is the point
// count of the block.
func LumpPointWeights(np int, elements [][]int, measures []float64) []float64 {
	w := make([]float64, np)
	for ei, pts := range elements {
		if len(pts) == 0 {
			continue
		}
		share := measures[ei] / float64(len(pts))
		for _, p := range pts {
			w[p] += share
		}
	}
	return w
}

func add(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func scale(a [3]float64, s float64) [3]float64 {
	return [3]float64{a[0] * s, a[1] * s, a[2] * s}
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func norm(a [3]float64) float64 {
	return math.Sqrt(dot(a, a))
}
