package rules

import (
	"regexp"

	"github.com/walteh/fixrc/pkg/rule"
)

// Prisma schema-mismatch repairs. These rules touch named fields in
// specific generated service files; overlapping rewrites of the same
// field are surfaced by the runner as conflicts, never merged.

var postalLineRe = regexp.MustCompile(`(?m)^([ \t]*)postalCode:\s*([^,\n]+),[ \t]*$`)

// postalZipEdits mirrors every postalCode assignment with a zipCode
// line, for the schema that carries both spellings. The precondition
// keeps it idempotent: once any zipCode exists, nothing is inserted.
func postalZipEdits(path string, content []byte) ([]rule.Edit, error) {
	if rule.IdentifierUsed(content, "zipCode") {
		return nil, nil
	}
	var edits []rule.Edit
	for _, m := range postalLineRe.FindAllSubmatchIndex(content, -1) {
		indent := string(content[m[2]:m[3]])
		expr := string(content[m[4]:m[5]])
		_, lineEnd := rule.LineSpan(content, m[0])
		edits = append(edits, rule.Edit{
			Start: lineEnd,
			End:   lineEnd,
			Text:  indent + "zipCode: " + expr + ",\n",
		})
	}
	return edits, nil
}

// commentFieldRule builds a rule that comments out assignments to a
// field the schema does not carry. The pattern requires the field name
// at the start of the line, so an already-commented line can't match
// again.
func commentFieldRule(id, glob, field string) rule.Rule {
	re := regexp.MustCompile(`(?m)^([ \t]*)` + regexp.QuoteMeta(field) + `:[^\n]*$`)
	return rule.MustStructural(id, glob, func(path string, content []byte) ([]rule.Edit, error) {
		var edits []rule.Edit
		for _, m := range re.FindAllSubmatchIndex(content, -1) {
			edits = append(edits, rule.Edit{Start: m[3], End: m[3], Text: "// "})
		}
		return edits, nil
	}, rule.WithTags("schema"))
}
