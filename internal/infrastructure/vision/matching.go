package vision

import (
	"sort"

	"shearzone/internal/domain/entity"
)

// Match соответствие дескриптора запроса дескриптору обучающего набора.
type Match struct {
	QueryIdx int
	TrainIdx int
	Distance float64
}

// CrossCheck оставляет только взаимные соответствия: forward сопоставляет
// опорный снимок с подвижным, backward наоборот.
func CrossCheck(forward, backward []Match) []Match {
	reverse := make(map[int]int, len(backward))
	for _, m := range backward {
		reverse[m.QueryIdx] = m.TrainIdx
	}

	out := make([]Match, 0, len(forward))
	for _, m := range forward {
		if back, ok := reverse[m.TrainIdx]; ok && back == m.QueryIdx {
			out = append(out, m)
		}
	}
	return out
}

// SelectBest сортирует соответствия по расстоянию и оставляет не больше n лучших.
// Входной срез не меняется.
func SelectBest(matches []Match, n int) []Match {
	out := make([]Match, len(matches))
	copy(out, matches)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Correspondences переводит соответствия в пары точек.
// Индексы запроса указывают на точки опорного снимка, обучающие на подвижный.
func Correspondences(matches []Match, reference, moving []entity.Point) []entity.Correspondence {
	out := make([]entity.Correspondence, 0, len(matches))
	for _, m := range matches {
		if m.QueryIdx < 0 || m.QueryIdx >= len(reference) || m.TrainIdx < 0 || m.TrainIdx >= len(moving) {
			continue
		}
		out = append(out, entity.Correspondence{
			Reference: reference[m.QueryIdx],
			Moving:    moving[m.TrainIdx],
			Distance:  m.Distance,
		})
	}
	return out
}

// checkMatchCount возвращает InsufficientMatchesError, если пар меньше минимума.
func checkMatchCount(found int) error {
	if found < entity.MinMatchCount {
		return &entity.InsufficientMatchesError{Found: found, Required: entity.MinMatchCount}
	}
	return nil
}

// MatchLine пара для визуализации сопоставления.
type MatchLine struct {
	entity.Correspondence
	Inlier bool
}

// MatchLines отбирает пары для рисования: инлаеры всегда, выбросы только при withOutliers.
func MatchLines(pairs []entity.Correspondence, inliers []bool, withOutliers bool) []MatchLine {
	out := make([]MatchLine, 0, len(pairs))
	for i, p := range pairs {
		in := i < len(inliers) && inliers[i]
		if !in && !withOutliers {
			continue
		}
		out = append(out, MatchLine{Correspondence: p, Inlier: in})
	}
	return out
}
