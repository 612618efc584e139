package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FlosMume/CareMind/internal/domain"
)

func TestExportColumnOrder(t *testing.T) {
	t.Parallel()

	records := []domain.DrugRecord{
		{
			Name:              "阿司匹林",
			Indications:       "解热镇痛",
			Contraindications: domain.Unannotated,
			Interactions:      "与抗凝药合用出血风险增加",
			PregnancyCategory: "Caution (unclassified grade)",
			Source:            "DrugBank",
		},
		{
			Name:              "布洛芬",
			Indications:       domain.Unannotated,
			Contraindications: domain.Unannotated,
			Interactions:      domain.Unannotated,
			PregnancyCategory: domain.Unannotated,
			Source:            domain.SourceUnknown,
		},
	}

	data, err := NewXLSXExporter(nil).Export(records)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	for i, want := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		got, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	row2 := []string{"阿司匹林", "解热镇痛", domain.Unannotated,
		"与抗凝药合用出血风险增加", "Caution (unclassified grade)", "DrugBank"}
	for i, want := range row2 {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		got, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	name, err := f.GetCellValue(sheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "布洛芬", name)

	src, err := f.GetCellValue(sheet, "F3")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceUnknown, src)
}

func TestExportEmptyRecordSet(t *testing.T) {
	t.Parallel()

	data, err := NewXLSXExporter(nil).Export(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
