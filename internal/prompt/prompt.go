// Package prompt renders resolved drug records into stable, field-labeled
// text blocks for prompt composition by the downstream answer pipeline.
// Only the record shape is consumed here; no resolution logic exists.
package prompt

import (
	"strings"

	"github.com/FlosMume/CareMind/internal/domain"
)

const (
	noDrug      = "未指定药品"
	emptyFields = "（药品信息存在，但字段为空）"
)

// FormatDrugInfo renders rec into a labeled block with a fixed field
// order, skipping empty fields. A nil record renders the no-drug marker.
func FormatDrugInfo(rec *domain.DrugRecord) string {
	if rec == nil {
		return noDrug
	}

	pairs := []struct {
		label string
		value string
	}{
		{"药品名称", rec.Name},
		{"适应症", rec.Indications},
		{"禁忌症", rec.Contraindications},
		{"药物相互作用", rec.Interactions},
		{"妊娠分级", rec.PregnancyCategory},
		{"来源", rec.Source},
	}

	var lines []string
	for _, p := range pairs {
		if p.value != "" {
			lines = append(lines, p.label+": "+p.value)
		}
	}
	if len(lines) == 0 {
		return emptyFields
	}
	return strings.Join(lines, "\n")
}
