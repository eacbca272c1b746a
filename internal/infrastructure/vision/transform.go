package vision

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"shearzone/internal/domain/entity"
)

const (
	ransacConfidence    = 0.995
	ransacMaxIterations = 2000
	ransacSeed          = 20240601

	collinearEps = 1e-6
)

// FitTransform оценивает преобразование подвижных точек в опорные методом RANSAC.
//
// Пара считается инлаером, если ошибка репроекции не больше threshold пикселей.
// После поиска модель уточняется по всем инлаерам.
func FitTransform(pairs []entity.Correspondence, model entity.TransformModel, threshold float64) (entity.TransformEstimate, error) {
	if threshold <= 0 {
		threshold = entity.DefaultInlierThreshold
	}
	solver, sampleSize, err := solverFor(model)
	if err != nil {
		return entity.TransformEstimate{}, err
	}
	n := len(pairs)
	if n < sampleSize {
		return entity.TransformEstimate{}, fmt.Errorf("%d pairs for %s: %w", n, model, entity.ErrTransformFitFailed)
	}

	rng := rand.New(rand.NewSource(ransacSeed))
	var (
		best      entity.Transform
		bestCount int
		found     bool
	)
	iterations := ransacMaxIterations
	sample := make([]entity.Correspondence, sampleSize)
	for iter := 0; iter < iterations; iter++ {
		for i, idx := range rng.Perm(n)[:sampleSize] {
			sample[i] = pairs[idx]
		}
		if degenerateSample(sample) {
			continue
		}
		t, err := solver(sample)
		if err != nil {
			continue
		}
		count := countInliers(pairs, t, threshold)
		if count > bestCount {
			best, bestCount, found = t, count, true
			iterations = clampIterations(adaptiveIterations(float64(count)/float64(n), sampleSize), iter+1)
		}
	}
	if !found || bestCount < sampleSize {
		return entity.TransformEstimate{}, fmt.Errorf("ransac over %d pairs: %w", n, entity.ErrTransformFitFailed)
	}

	inliers := markInliers(pairs, best, threshold)
	if refined, err := solver(selectPairs(pairs, inliers)); err == nil {
		if refinedInliers := markInliers(pairs, refined, threshold); countTrue(refinedInliers) >= countTrue(inliers) {
			best, inliers = refined, refinedInliers
		}
	}

	est := entity.TransformEstimate{
		Model:       model,
		Matrix:      best,
		Inliers:     inliers,
		InlierCount: countTrue(inliers),
	}
	var sum float64
	for i, in := range inliers {
		if in {
			sum += residual(best, pairs[i])
		}
	}
	if est.InlierCount > 0 {
		est.MeanResidual = sum / float64(est.InlierCount)
	}
	return est, nil
}

type transformSolver func(pairs []entity.Correspondence) (entity.Transform, error)

func solverFor(model entity.TransformModel) (transformSolver, int, error) {
	switch model {
	case entity.ModelHomography, "":
		return solveHomography, 4, nil
	case entity.ModelAffine:
		return solveAffine, 3, nil
	}
	return nil, 0, fmt.Errorf("transform %q: %w", model, entity.ErrUnknownAlgorithm)
}

// adaptiveIterations число выборок, при котором с заданной уверенностью
// хотя бы одна состоит только из инлаеров.
func adaptiveIterations(inlierRatio float64, sampleSize int) int {
	if inlierRatio >= 1 {
		return 1
	}
	p := math.Pow(inlierRatio, float64(sampleSize))
	if p <= 0 {
		return ransacMaxIterations
	}
	denom := math.Log(1 - p)
	if denom >= 0 {
		return ransacMaxIterations
	}
	return int(math.Ceil(math.Log(1-ransacConfidence) / denom))
}

func clampIterations(v, lo int) int {
	if v > ransacMaxIterations {
		v = ransacMaxIterations
	}
	if v < lo {
		v = lo
	}
	return v
}

func residual(t entity.Transform, p entity.Correspondence) float64 {
	return t.Apply(p.Moving).Distance(p.Reference)
}

func countInliers(pairs []entity.Correspondence, t entity.Transform, threshold float64) int {
	n := 0
	for _, p := range pairs {
		if residual(t, p) <= threshold {
			n++
		}
	}
	return n
}

func markInliers(pairs []entity.Correspondence, t entity.Transform, threshold float64) []bool {
	out := make([]bool, len(pairs))
	for i, p := range pairs {
		out[i] = residual(t, p) <= threshold
	}
	return out
}

func selectPairs(pairs []entity.Correspondence, keep []bool) []entity.Correspondence {
	out := make([]entity.Correspondence, 0, len(pairs))
	for i, p := range pairs {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

func countTrue(v []bool) int {
	n := 0
	for _, b := range v {
		if b {
			n++
		}
	}
	return n
}

// degenerateSample проверяет, нет ли среди точек выборки трёх на одной прямой.
func degenerateSample(sample []entity.Correspondence) bool {
	for i := 0; i < len(sample); i++ {
		for j := i + 1; j < len(sample); j++ {
			for k := j + 1; k < len(sample); k++ {
				if collinear(sample[i].Moving, sample[j].Moving, sample[k].Moving) ||
					collinear(sample[i].Reference, sample[j].Reference, sample[k].Reference) {
					return true
				}
			}
		}
	}
	return false
}

func collinear(a, b, c entity.Point) bool {
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	scale := math.Max(a.Distance(b)*a.Distance(c), 1)
	return math.Abs(cross)/scale < collinearEps
}

// normalization переносит центр масс в начало координат и масштабирует
// среднее расстояние до √2. Возвращает матрицу и обратную к ней.
func normalization(points []entity.Point) (*mat.Dense, *mat.Dense) {
	var cx, cy float64
	for _, p := range points {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(points))
	cy /= float64(len(points))

	var mean float64
	for _, p := range points {
		mean += math.Hypot(p.X-cx, p.Y-cy)
	}
	mean /= float64(len(points))
	s := 1.0
	if mean > 0 {
		s = math.Sqrt2 / mean
	}

	t := mat.NewDense(3, 3, []float64{
		s, 0, -s * cx,
		0, s, -s * cy,
		0, 0, 1,
	})
	inv := mat.NewDense(3, 3, []float64{
		1 / s, 0, cx,
		0, 1 / s, cy,
		0, 0, 1,
	})
	return t, inv
}

func applyDense(t *mat.Dense, p entity.Point) entity.Point {
	return entity.Point{
		X: t.At(0, 0)*p.X + t.At(0, 1)*p.Y + t.At(0, 2),
		Y: t.At(1, 0)*p.X + t.At(1, 1)*p.Y + t.At(1, 2),
	}
}

// solveHomography прямое линейное преобразование (DLT) с нормализацией точек.
func solveHomography(pairs []entity.Correspondence) (entity.Transform, error) {
	n := len(pairs)
	if n < 4 {
		return entity.Transform{}, entity.ErrTransformFitFailed
	}
	src := make([]entity.Point, n)
	dst := make([]entity.Point, n)
	for i, p := range pairs {
		src[i], dst[i] = p.Moving, p.Reference
	}
	tSrc, _ := normalization(src)
	tDst, tDstInv := normalization(dst)

	a := mat.NewDense(2*n, 9, nil)
	for i := range pairs {
		s := applyDense(tSrc, src[i])
		d := applyDense(tDst, dst[i])
		a.SetRow(2*i, []float64{-s.X, -s.Y, -1, 0, 0, 0, d.X * s.X, d.X * s.Y, d.X})
		a.SetRow(2*i+1, []float64{0, 0, 0, -s.X, -s.Y, -1, d.Y * s.X, d.Y * s.Y, d.Y})
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		return entity.Transform{}, fmt.Errorf("svd: %w", entity.ErrTransformFitFailed)
	}
	var v mat.Dense
	svd.VTo(&v)
	h := mat.NewDense(3, 3, nil)
	for i := 0; i < 9; i++ {
		h.Set(i/3, i%3, v.At(i, 8))
	}

	// H = Tdst⁻¹ · Hn · Tsrc
	var tmp, full mat.Dense
	tmp.Mul(tDstInv, h)
	full.Mul(&tmp, tSrc)

	w := full.At(2, 2)
	if math.Abs(w) < 1e-12 {
		return entity.Transform{}, fmt.Errorf("homography at infinity: %w", entity.ErrTransformFitFailed)
	}
	var t entity.Transform
	for i := 0; i < 9; i++ {
		t[i] = full.At(i/3, i%3) / w
	}
	if det := mat.Det(mat.NewDense(3, 3, t[:])); math.Abs(det) < 1e-9 {
		return entity.Transform{}, fmt.Errorf("singular homography: %w", entity.ErrTransformFitFailed)
	}
	return t, nil
}

// solveAffine аффинное преобразование методом наименьших квадратов (QR).
func solveAffine(pairs []entity.Correspondence) (entity.Transform, error) {
	n := len(pairs)
	if n < 3 {
		return entity.Transform{}, entity.ErrTransformFitFailed
	}
	a := mat.NewDense(2*n, 6, nil)
	b := mat.NewVecDense(2*n, nil)
	for i, p := range pairs {
		x, y := p.Moving.X, p.Moving.Y
		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1})
		b.SetVec(2*i, p.Reference.X)
		b.SetVec(2*i+1, p.Reference.Y)
	}

	var qr mat.QR
	qr.Factorize(a)
	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, b); err != nil {
		return entity.Transform{}, fmt.Errorf("affine least squares: %v: %w", err, entity.ErrTransformFitFailed)
	}
	t := entity.Transform{
		params.AtVec(0), params.AtVec(1), params.AtVec(2),
		params.AtVec(3), params.AtVec(4), params.AtVec(5),
		0, 0, 1,
	}
	if det := t[0]*t[4] - t[1]*t[3]; math.Abs(det) < 1e-9 {
		return entity.Transform{}, fmt.Errorf("singular affine: %w", entity.ErrTransformFitFailed)
	}
	return t, nil
}
