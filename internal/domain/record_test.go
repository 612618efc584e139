package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillOnlyEmptyFields(t *testing.T) {
	t.Parallel()

	rec := NewDrugRecord("阿司匹林")

	contributed := rec.Fill(FieldSet{Indications: "解热镇痛"})
	assert.True(t, contributed)
	assert.Equal(t, "解热镇痛", rec.Indications)

	// A later source never overwrites resolved content.
	contributed = rec.Fill(FieldSet{Indications: "其他内容", Contraindications: "出血倾向"})
	assert.True(t, contributed)
	assert.Equal(t, "解热镇痛", rec.Indications)
	assert.Equal(t, "出血倾向", rec.Contraindications)

	contributed = rec.Fill(FieldSet{Indications: "再次覆盖"})
	assert.False(t, contributed)
}

func TestAttachSourceOrder(t *testing.T) {
	t.Parallel()

	rec := NewDrugRecord("x")
	rec.AttachSource("NMPA (online)")
	rec.AttachSource("DrugBank")
	assert.Equal(t, "NMPA (online) + DrugBank", rec.Source)
}

func TestFinalizeSentinels(t *testing.T) {
	t.Parallel()

	rec := NewDrugRecord("x")
	rec.Fill(FieldSet{Interactions: "与华法林合用出血风险增加"})
	rec.AttachSource("DrugBank")
	rec.Finalize()

	assert.Equal(t, Unannotated, rec.Indications)
	assert.Equal(t, Unannotated, rec.Contraindications)
	assert.Equal(t, "与华法林合用出血风险增加", rec.Interactions)
	assert.Equal(t, Unannotated, rec.PregnancyCategory)
	assert.Equal(t, "DrugBank", rec.Source)
	assert.True(t, rec.Complete())
}

func TestFinalizeUnresolvedProvenance(t *testing.T) {
	t.Parallel()

	rec := NewDrugRecord("x")
	rec.Finalize()
	assert.Equal(t, SourceUnknown, rec.Source)
	assert.True(t, rec.Complete())
}
