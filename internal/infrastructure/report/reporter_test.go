package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"

	"shearzone/internal/domain/entity"
)

func sampleTable(scale *entity.Scale) *entity.ComponentTable {
	t := &entity.ComponentTable{
		Scale: scale,
		Components: []entity.ComponentRecord{
			{Label: 1, CentroidRow: 7.5, CentroidCol: 11.5, AreaPx: 200, PerimeterPx: 56},
			{Label: 2, CentroidRow: 15.5, CentroidCol: 25.5, AreaPx: 4, PerimeterPx: 4},
		},
		TotalAreaPx:       204,
		TotalPerimeterPx:  60,
		RegionAreaPx:      504,
		RegionPerimeterPx: 92,
	}
	if scale != nil {
		for i := range t.Components {
			c := &t.Components[i]
			c.Area, c.Perimeter = scale.Area(c.AreaPx), scale.Length(c.PerimeterPx)
		}
		t.TotalArea, t.TotalPerimeter = scale.Area(204), scale.Length(60)
		t.RegionArea, t.RegionPerimeter = scale.Area(504), scale.Length(92)
	}
	return t
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSV_Uncalibrated(t *testing.T) {
	data, err := CSV(sampleTable(nil))
	require.NoError(t, err)

	rows := readCSV(t, data)
	require.Len(t, rows, 3+2+1)
	require.Equal(t, []string{csvTitle}, rows[0])
	require.Equal(t, []string{"Shear Perimeter", "92.00 px", "Shear Area", "504.00 px^2"}, rows[1])
	require.Equal(t, csvHeader, rows[2])
	require.Equal(t, []string{"7.50", "11.50", "0.00", "0.00", "200.00", "56.00"}, rows[3])
	require.Equal(t, []string{"Total", "", "0.00", "0.00", "204.00", "60.00"}, rows[5])
}

func TestCSV_Calibrated(t *testing.T) {
	scale := entity.Scale(0.1)
	data, err := CSV(sampleTable(&scale))
	require.NoError(t, err)

	rows := readCSV(t, data)
	require.Equal(t, "Real Scale", rows[1][4])
	require.Equal(t, "0.1", rows[1][5])
	require.Equal(t, "92.00 px / 9.20 mm", rows[1][1])
	require.Equal(t, []string{"Total", "", "2.04", "6.00", "204.00", "60.00"}, rows[5])
}

func TestReporter_Describe(t *testing.T) {
	rep, err := NewReporter(1).Describe(context.Background(), sampleTable(nil))
	require.NoError(t, err)
	require.Contains(t, rep.Text, "Найдено зон разрушения: 2")
	require.Contains(t, rep.Text, "#1 ")
	require.NotContains(t, rep.Text, "#2 ")
	require.Contains(t, rep.Text, "/scale")
	require.NotEmpty(t, rep.CSV)

	_, err = NewReporter(0).Describe(context.Background(), nil)
	require.ErrorIs(t, err, entity.ErrNoResult)
}
