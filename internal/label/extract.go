// Package label parses Chinese package-insert text into structured fields.
// Label documents are semi-structured free text with inconsistent heading
// styles, so sections are located by heading-pattern alternations and
// terminated at the next generic bracketed heading marker.
package label

import (
	"regexp"
	"strings"

	"github.com/FlosMume/CareMind/internal/domain"
)

// Pre-compiled heading alternations for the extracted fields. Each pattern
// accepts the bracketed heading plus common unbracketed spellings.
var (
	indicationsRe       = regexp.MustCompile(`(?i)(?:【适应症】|适\s*应\s*症|适应证|适应症状)[：:\s]*`)
	contraindicationsRe = regexp.MustCompile(`(?i)(?:【禁忌】|禁\s*忌|禁忌症)[：:\s]*`)
	interactionsRe      = regexp.MustCompile(`(?i)(?:【药物相互作用】|相互作用|药物-药物相互作用)[：:\s]*`)
	pregnancyRe         = regexp.MustCompile(`(?i)(?:【孕妇及哺乳期用药】|孕妇及哺乳期用药|孕期用药|妊娠用药)[：:\s]*`)

	// nextSectionRe terminates a section at the following bracketed heading.
	nextSectionRe = regexp.MustCompile(`【[^】]{1,20}】`)

	whitespaceRe = regexp.MustCompile(`\s+`)
)

// SliceSection returns the content between the first match of heading and
// the next bracketed section marker, or to end of text when no marker
// follows. The result is whitespace-collapsed and trimmed; an empty string
// means the section was not found or collapsed to nothing.
func SliceSection(text string, heading *regexp.Regexp) string {
	loc := heading.FindStringIndex(text)
	if loc == nil {
		return ""
	}

	tail := text[loc[1]:]
	if next := nextSectionRe.FindStringIndex(tail); next != nil {
		tail = tail[:next[0]]
	}

	return CollapseWhitespace(tail)
}

// CollapseWhitespace folds runs of whitespace into single spaces and trims.
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// Parse extracts the four label fields from normalized full-document text.
// Fields whose sections are absent stay empty so lower-priority sources can
// still contribute them; the pregnancy classification is likewise only
// recorded when it resolved to a real tier, leaving the sentinel to the
// record finalization step.
func Parse(fullText string) domain.FieldSet {
	text := CollapseWhitespace(fullText)

	fs := domain.FieldSet{
		Indications:       SliceSection(text, indicationsRe),
		Contraindications: SliceSection(text, contraindicationsRe),
		Interactions:      SliceSection(text, interactionsRe),
	}

	if cls := ClassifyPregnancy(SliceSection(text, pregnancyRe)); cls != domain.Unannotated {
		fs.PregnancyCategory = cls
	}

	return fs
}
