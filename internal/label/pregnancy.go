package label

import (
	"regexp"

	"github.com/FlosMume/CareMind/internal/domain"
)

// Coarse pregnancy-risk labels. Mainland package inserts rarely carry
// A/B/C/D/X grades, so the section text is mapped onto three tiers.
const (
	PregnancyContraindicated = "Contraindicated (unclassified grade)"
	PregnancyCaution         = "Caution (unclassified grade)"
)

var (
	prohibitionRe = regexp.MustCompile(`禁用|绝对禁用|禁止使用`)
	cautionRe     = regexp.MustCompile(`慎用|权衡利弊|风险.*收益`)
)

// ClassifyPregnancy maps extracted pregnancy/lactation section text onto a
// coarse risk label. Prohibition keywords take precedence over caution
// keywords; text matching neither, or an empty section, is Unannotated.
// The keyword sets are a deliberately coarse heuristic, not a medical-grade
// classifier.
func ClassifyPregnancy(section string) string {
	if section == "" {
		return domain.Unannotated
	}
	if prohibitionRe.MatchString(section) {
		return PregnancyContraindicated
	}
	if cautionRe.MatchString(section) {
		return PregnancyCaution
	}
	return domain.Unannotated
}
