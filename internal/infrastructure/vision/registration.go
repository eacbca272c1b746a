//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"shearzone/internal/domain/entity"
	"shearzone/internal/domain/port"
)

// featureDetector общий интерфейс детекторов SIFT и ORB в gocv.
type featureDetector interface {
	DetectAndCompute(src gocv.Mat, mask gocv.Mat) ([]gocv.KeyPoint, gocv.Mat)
	Close() error
}

type Registrar struct {
	InlierColor  color.RGBA
	OutlierColor color.RGBA
	LineWidth    int
	DrawOutliers bool // рисовать и отброшенные пары
}

// NewRegistrar создаёт совмещение снимков на OpenCV.
func NewRegistrar() *Registrar {
	return &Registrar{
		InlierColor:  color.RGBA{G: 255, A: 255},
		OutlierColor: color.RGBA{R: 255, A: 255},
		LineWidth:    1,
	}
}

// Register переносит moving в систему координат reference.
func (r *Registrar) Register(ctx context.Context, reference, moving image.Image, params entity.RegistrationParams) (*entity.RegistrationResult, error) {
	_ = ctx
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if reference == nil || moving == nil {
		return nil, entity.ErrNoImage
	}

	refMat, err := gocv.ImageToMatRGB(reference)
	if err != nil {
		return nil, fmt.Errorf("reference image: %w", err)
	}
	defer refMat.Close()
	movMat, err := gocv.ImageToMatRGB(moving)
	if err != nil {
		return nil, fmt.Errorf("moving image: %w", err)
	}
	defer movMat.Close()

	refPoints, refDesc, err := detect(refMat, params)
	if err != nil {
		return nil, err
	}
	defer refDesc.Close()
	movPoints, movDesc, err := detect(movMat, params)
	if err != nil {
		return nil, err
	}
	defer movDesc.Close()

	if refDesc.Empty() || movDesc.Empty() {
		return nil, checkMatchCount(0)
	}

	matches := SelectBest(matchDescriptors(refDesc, movDesc, normFor(params.Algorithm)), entity.KeepBestMatches)
	if err := checkMatchCount(len(matches)); err != nil {
		return nil, err
	}

	pairs := Correspondences(matches, refPoints, movPoints)
	est, err := FitTransform(pairs, params.Model, params.InlierThreshold)
	if err != nil {
		return nil, err
	}

	warped, err := warp(movMat, est.Matrix, refMat.Cols(), refMat.Rows())
	if err != nil {
		return nil, err
	}
	vis, err := r.drawMatches(refMat, movMat, pairs, est.Inliers)
	if err != nil {
		return nil, err
	}

	return &entity.RegistrationResult{
		Warped:     warped,
		Matches:    vis,
		Estimate:   est,
		MatchCount: len(matches),
	}, nil
}

func newDetector(params entity.RegistrationParams) (featureDetector, error) {
	switch params.Algorithm {
	case entity.AlgorithmSIFT:
		sift := gocv.NewSIFT()
		return &sift, nil
	case entity.AlgorithmORB:
		orb := gocv.NewORBWithParams(params.MaxFeatures, 1.2, 8, 31, 0, 2, gocv.ORBScoreTypeHarris, 31, 20)
		return &orb, nil
	}
	return nil, fmt.Errorf("algorithm %q: %w", params.Algorithm, entity.ErrUnknownAlgorithm)
}

func normFor(algorithm entity.Algorithm) gocv.NormType {
	if algorithm == entity.AlgorithmORB {
		return gocv.NormHamming
	}
	return gocv.NormL2
}

// detect ищет особые точки на сером изображении.
func detect(src gocv.Mat, params entity.RegistrationParams) ([]entity.Point, gocv.Mat, error) {
	detector, err := newDetector(params)
	if err != nil {
		return nil, gocv.NewMat(), err
	}
	defer detector.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	mask := gocv.NewMat()
	defer mask.Close()
	keypoints, desc := detector.DetectAndCompute(gray, mask)

	points := make([]entity.Point, len(keypoints))
	for i, kp := range keypoints {
		points[i] = entity.Point{X: kp.X, Y: kp.Y}
	}
	return points, desc, nil
}

// matchDescriptors ближайший сосед в обе стороны с перекрёстной проверкой.
func matchDescriptors(refDesc, movDesc gocv.Mat, norm gocv.NormType) []Match {
	matcher := gocv.NewBFMatcherWithParams(norm, false)
	defer matcher.Close()

	forward := nearest(matcher.KnnMatch(refDesc, movDesc, 1))
	backward := nearest(matcher.KnnMatch(movDesc, refDesc, 1))
	return CrossCheck(forward, backward)
}

func nearest(knn [][]gocv.DMatch) []Match {
	out := make([]Match, 0, len(knn))
	for _, candidates := range knn {
		if len(candidates) == 0 {
			continue
		}
		m := candidates[0]
		out = append(out, Match{QueryIdx: m.QueryIdx, TrainIdx: m.TrainIdx, Distance: m.Distance})
	}
	return out
}

// warp переносит изображение перспективным преобразованием в кадр width x height.
func warp(src gocv.Mat, t entity.Transform, width, height int) (image.Image, error) {
	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	defer m.Close()
	for i, v := range t {
		m.SetDoubleAt(i/3, i%3, v)
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.WarpPerspective(src, &dst, m, image.Pt(width, height))

	img, err := dst.ToImage()
	if err != nil {
		return nil, fmt.Errorf("warped image: %w", err)
	}
	return img, nil
}

// drawMatches рисует снимки рядом и соединяет инлаеры; выбросы красным, если DrawOutliers.
func (r *Registrar) drawMatches(refMat, movMat gocv.Mat, pairs []entity.Correspondence, inliers []bool) (image.Image, error) {
	width := refMat.Cols() + movMat.Cols()
	height := maxInt(refMat.Rows(), movMat.Rows())
	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC3)
	defer canvas.Close()

	left := canvas.Region(image.Rect(0, 0, refMat.Cols(), refMat.Rows()))
	refMat.CopyTo(&left)
	left.Close()
	right := canvas.Region(image.Rect(refMat.Cols(), 0, width, movMat.Rows()))
	movMat.CopyTo(&right)
	right.Close()

	offset := refMat.Cols()
	for _, p := range MatchLines(pairs, inliers, r.DrawOutliers) {
		c := r.OutlierColor
		if p.Inlier {
			c = r.InlierColor
		}
		a := image.Pt(int(p.Reference.X+0.5), int(p.Reference.Y+0.5))
		b := image.Pt(offset+int(p.Moving.X+0.5), int(p.Moving.Y+0.5))
		gocv.Line(&canvas, a, b, c, r.LineWidth)
		gocv.Circle(&canvas, a, 3, c, r.LineWidth)
		gocv.Circle(&canvas, b, 3, c, r.LineWidth)
	}

	img, err := canvas.ToImage()
	if err != nil {
		return nil, fmt.Errorf("matches image: %w", err)
	}
	return img, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

var _ port.Registrar = (*Registrar)(nil)
