package parser

import (
	"regexp"

	"github.com/qweylin/studypacer/internal/learner"
)

// The detail page embeds the six submission tokens as hidden inputs with
// fixed element ids. hidSessionID really does capitalize its trailing D.
var hiddenFieldRes = []struct {
	name   string
	re     *regexp.Regexp
	assign func(*learner.ItemParameters, string)
}{
	{"hidNewId", hiddenRe("hidNewId"), func(p *learner.ItemParameters, v string) { p.NewID = v }},
	{"hidRefId", hiddenRe("hidRefId"), func(p *learner.ItemParameters, v string) { p.RefID = v }},
	{"hidStudentId", hiddenRe("hidStudentId"), func(p *learner.ItemParameters, v string) { p.StudentID = v }},
	{"hidPassLine", hiddenRe("hidPassLine"), func(p *learner.ItemParameters, v string) { p.PassLine = v }},
	{"hidStudyTime", hiddenRe("hidStudyTime"), func(p *learner.ItemParameters, v string) { p.StudyTime = v }},
	{"hidSessionID", hiddenRe("hidSessionID"), func(p *learner.ItemParameters, v string) { p.SessionID = v }},
}

func hiddenRe(id string) *regexp.Regexp {
	return regexp.MustCompile(`id="` + id + `"\s+value="([^"]+)"`)
}

// HiddenFields parses item detail pages.
type HiddenFields struct{}

// ExtractItemParameters pulls the six submission tokens out of a detail page
// body. A missing field yields a ProtocolShapeError naming it; partial sets
// are never returned.
func (HiddenFields) ExtractItemParameters(body []byte) (learner.ItemParameters, error) {
	var params learner.ItemParameters
	for _, field := range hiddenFieldRes {
		groups := field.re.FindSubmatch(body)
		if len(groups) < 2 {
			return learner.ItemParameters{}, &learner.ProtocolShapeError{Field: field.name}
		}
		field.assign(&params, string(groups[1]))
	}
	return params, nil
}
