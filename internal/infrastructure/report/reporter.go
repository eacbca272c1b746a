package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"shearzone/internal/domain/entity"
	"shearzone/internal/domain/port"
)

const csvTitle = "Rock Joint Shear Failure Region Detail Information"

var csvHeader = []string{
	"Center X(px)", "Center Y(px)", "Area(mm^2)", "Perimeter(mm)", "Area(px^2)", "Perimeter(px)",
}

// Reporter описывает таблицу компонент для чата и для экспорта.
type Reporter struct {
	TopN int // сколько крупнейших зон перечислять в тексте
}

// NewReporter создаёт генератор отчётов.
func NewReporter(topN int) *Reporter {
	if topN <= 0 {
		topN = 10
	}
	return &Reporter{TopN: topN}
}

func (r *Reporter) Describe(ctx context.Context, table *entity.ComponentTable) (*entity.Report, error) {
	_ = ctx
	if table == nil {
		return nil, entity.ErrNoResult
	}
	data, err := CSV(table)
	if err != nil {
		return nil, err
	}
	return &entity.Report{Text: r.text(table), CSV: data}, nil
}

func (r *Reporter) text(table *entity.ComponentTable) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Найдено зон разрушения: %d\n\n", len(table.Components))

	fmt.Fprintf(&sb, "Область сдвига:\n• периметр %s\n• площадь %s\n",
		lengthText(table.RegionPerimeterPx, table.RegionPerimeter, table.Calibrated()),
		areaText(table.RegionAreaPx, table.RegionArea, table.Calibrated()))
	fmt.Fprintf(&sb, "Суммарная площадь разрушения: %s (%.1f%% области)\n",
		areaText(table.TotalAreaPx, table.TotalArea, table.Calibrated()), table.DamageRatio()*100)

	if len(table.Components) == 0 {
		return sb.String()
	}

	top := make([]entity.ComponentRecord, len(table.Components))
	copy(top, table.Components)
	sort.SliceStable(top, func(i, j int) bool { return top[i].AreaPx > top[j].AreaPx })
	if len(top) > r.TopN {
		top = top[:r.TopN]
	}
	sb.WriteString("\nКрупнейшие зоны:\n")
	for _, c := range top {
		fmt.Fprintf(&sb, "#%d (%.0f; %.0f): %s, периметр %s\n",
			c.Label, c.CentroidCol, c.CentroidRow,
			areaText(c.AreaPx, c.Area, table.Calibrated()),
			lengthText(c.PerimeterPx, c.Perimeter, table.Calibrated()))
	}
	if !table.Calibrated() {
		sb.WriteString("\nℹ️ Масштаб не задан: величины только в пикселях. Используйте /scale.")
	}
	return sb.String()
}

func areaText(px, mm float64, calibrated bool) string {
	if !calibrated {
		return fmt.Sprintf("%.2f px^2", px)
	}
	return fmt.Sprintf("%.2f px^2 / %.2f mm^2", px, mm)
}

func lengthText(px, mm float64, calibrated bool) string {
	if !calibrated {
		return fmt.Sprintf("%.2f px", px)
	}
	return fmt.Sprintf("%.2f px / %.2f mm", px, mm)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// CSV выгружает таблицу: заголовок, сведения об области сдвига, строки компонент и итог.
func CSV(table *entity.ComponentTable) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	summary := []string{
		"Shear Perimeter", lengthText(table.RegionPerimeterPx, table.RegionPerimeter, table.Calibrated()),
		"Shear Area", areaText(table.RegionAreaPx, table.RegionArea, table.Calibrated()),
	}
	if table.Calibrated() {
		summary = append(summary, "Real Scale", strconv.FormatFloat(float64(*table.Scale), 'g', -1, 64))
	}

	records := [][]string{{csvTitle}, summary, csvHeader}
	for _, c := range table.Components {
		records = append(records, []string{
			num(c.CentroidRow), num(c.CentroidCol),
			num(c.Area), num(c.Perimeter),
			num(c.AreaPx), num(c.PerimeterPx),
		})
	}
	records = append(records, []string{
		"Total", "",
		num(table.TotalArea), num(table.TotalPerimeter),
		num(table.TotalAreaPx), num(table.TotalPerimeterPx),
	})

	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

var _ port.Reporter = (*Reporter)(nil)
