package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FlosMume/CareMind/internal/domain"
)

func TestFormatDrugInfoNilRecord(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "未指定药品", FormatDrugInfo(nil))
}

func TestFormatDrugInfoStableOrder(t *testing.T) {
	t.Parallel()

	rec := &domain.DrugRecord{
		Name:              "阿司匹林",
		Indications:       "解热镇痛",
		Contraindications: "出血倾向者禁用",
		Interactions:      "与抗凝药合用出血风险增加",
		PregnancyCategory: "Caution (unclassified grade)",
		Source:            "NMPA (online) + DrugBank",
	}

	want := "药品名称: 阿司匹林\n" +
		"适应症: 解热镇痛\n" +
		"禁忌症: 出血倾向者禁用\n" +
		"药物相互作用: 与抗凝药合用出血风险增加\n" +
		"妊娠分级: Caution (unclassified grade)\n" +
		"来源: NMPA (online) + DrugBank"

	assert.Equal(t, want, FormatDrugInfo(rec))
}

func TestFormatDrugInfoSkipsEmptyFields(t *testing.T) {
	t.Parallel()

	rec := &domain.DrugRecord{Name: "阿司匹林", Indications: "解热镇痛"}
	assert.Equal(t, "药品名称: 阿司匹林\n适应症: 解热镇痛", FormatDrugInfo(rec))
}

func TestFormatDrugInfoAllEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "（药品信息存在，但字段为空）", FormatDrugInfo(&domain.DrugRecord{}))
}
