package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"shearzone/internal/domain/entity"
)

// fields делит аргументы команды по пробелам и ';'.
func fields(args string) []string {
	return strings.FieldsFunc(args, func(r rune) bool {
		return r == ' ' || r == ';' || r == '\t' || r == '\n'
	})
}

func parsePoint(s string) (entity.Point, error) {
	xy := strings.Split(s, ",")
	if len(xy) != 2 {
		return entity.Point{}, fmt.Errorf("point %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xy[0]), 64)
	if err != nil {
		return entity.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(xy[1]), 64)
	if err != nil {
		return entity.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	p := entity.Point{X: x, Y: y}
	if !p.Finite() {
		return entity.Point{}, fmt.Errorf("point %q: coordinates must be finite", s)
	}
	return p, nil
}

// parsePolygon разбирает "x,y x,y x,y ...". Пустая строка даёт пустой полигон.
func parsePolygon(args string) (entity.Polygon, error) {
	parts := fields(args)
	if len(parts) == 0 {
		return nil, nil
	}
	poly := make(entity.Polygon, 0, len(parts))
	for _, part := range parts {
		p, err := parsePoint(part)
		if err != nil {
			return nil, err
		}
		poly = append(poly, p)
	}
	if !poly.Valid() {
		return nil, entity.ErrInvalidPolygon
	}
	return poly, nil
}

// parseScale разбирает "x1,y1 x2,y2 длина_мм".
func parseScale(args string) (entity.Point, entity.Point, float64, error) {
	parts := fields(args)
	if len(parts) != 3 {
		return entity.Point{}, entity.Point{}, 0, fmt.Errorf("scale: want x1,y1 x2,y2 length")
	}
	a, err := parsePoint(parts[0])
	if err != nil {
		return entity.Point{}, entity.Point{}, 0, err
	}
	b, err := parsePoint(parts[1])
	if err != nil {
		return entity.Point{}, entity.Point{}, 0, err
	}
	length, err := parsePositive(parts[2])
	if err != nil {
		return entity.Point{}, entity.Point{}, 0, err
	}
	return a, b, length, nil
}

// parseAlgorithm разбирает "SIFT|ORB [maxFeatures]".
func parseAlgorithm(args string) (entity.Algorithm, int, error) {
	parts := fields(args)
	if len(parts) == 0 || len(parts) > 2 {
		return "", 0, fmt.Errorf("algorithm: want SIFT|ORB [maxFeatures]")
	}
	algo, err := entity.ParseAlgorithm(parts[0])
	if err != nil {
		return "", 0, err
	}
	maxFeatures := 0
	if len(parts) == 2 {
		if maxFeatures, err = strconv.Atoi(parts[1]); err != nil || maxFeatures <= 0 {
			return "", 0, fmt.Errorf("max features %q: want a positive integer", parts[1])
		}
	}
	return algo, maxFeatures, nil
}

func parsePositive(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(s, ",", ".")), 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%q: want a positive number", s)
	}
	return v, nil
}
