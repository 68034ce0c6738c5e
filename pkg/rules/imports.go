package rules

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/walteh/fixrc/pkg/rule"
)

// Import-layout repairs. These are structural rules: every one of them
// scans logical lines or import lists rather than matching greedy
// whole-file spans.

var (
	aliasImportRe   = regexp.MustCompile(`from\s+['"]@(config|services|middleware|routes|repositories|utils|integrations|types)(/[^'"]*)?['"]`)
	importListRe    = regexp.MustCompile(`import\s*(?:type\s+)?{([^}]*)}\s*from\s*['"][^'"]+['"]`)
	fastifyImportRe = regexp.MustCompile(`import\s*{([^}]*)}\s*from\s*['"]fastify['"]`)
)

// relPrefix converts a file's depth under the root into the relative
// prefix its imports need: "./" at the root, "../" one level down, and
// so on. The generator emitted "@alias/..." paths that the build has no
// resolver for, so depth decides the rewrite.
func relPrefix(path string) string {
	n := strings.Count(path, "/")
	if n == 0 {
		return "./"
	}
	return strings.Repeat("../", n)
}

// aliasImportEdits rewrites "@config/..." style imports to the
// depth-correct relative path.
func aliasImportEdits(path string, content []byte) ([]rule.Edit, error) {
	matches := aliasImportRe.FindAllSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return nil, nil
	}

	prefix := relPrefix(path)
	var edits []rule.Edit
	for _, m := range matches {
		dir := string(content[m[2]:m[3]])
		sub := ""
		if m[4] >= 0 {
			sub = string(content[m[4]:m[5]])
		}
		edits = append(edits, rule.Edit{
			Start: m[0],
			End:   m[1],
			Text:  "from '" + prefix + dir + sub + "'",
		})
	}
	return edits, nil
}

// dedupeImportNameEdits collapses duplicate entries inside one import
// list while preserving the order of first appearance.
func dedupeImportNameEdits(path string, content []byte) ([]rule.Edit, error) {
	var edits []rule.Edit
	for _, m := range importListRe.FindAllSubmatchIndex(content, -1) {
		list := string(content[m[2]:m[3]])
		parts := strings.Split(list, ",")

		var kept []string
		seen := map[string]bool{}
		dropped := false
		for _, p := range parts {
			name := strings.TrimSpace(p)
			if name == "" {
				dropped = true
				continue
			}
			if seen[name] {
				dropped = true
				continue
			}
			seen[name] = true
			kept = append(kept, name)
		}
		if !dropped || len(kept) == 0 {
			continue
		}
		edits = append(edits, rule.Edit{
			Start: m[2],
			End:   m[3],
			Text:  " " + strings.Join(kept, ", ") + " ",
		})
	}
	return edits, nil
}

// dedupeImportLineEdits removes import statements that repeat an
// earlier, textually identical import line.
func dedupeImportLineEdits(path string, content []byte) ([]rule.Edit, error) {
	seen := map[string]bool{}
	var edits []rule.Edit

	pos := 0
	for pos < len(content) {
		start, end := rule.LineSpan(content, pos)
		line := strings.TrimSpace(string(content[start:end]))
		if strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "import{") {
			if seen[line] {
				edits = append(edits, rule.Edit{Start: start, End: end, Text: ""})
			} else {
				seen[line] = true
			}
		}
		if end <= pos {
			break
		}
		pos = end
	}
	return edits, nil
}

// ensureFastifyTypeEdits adds FastifyRequest/FastifyReply to the
// fastify import when the handler rewrites left them used but not
// imported. With no fastify import at all, a fresh import line goes in
// immediately after the last existing import.
func ensureFastifyTypeEdits(path string, content []byte) ([]rule.Edit, error) {
	needed := []string{}
	for _, name := range []string{"FastifyRequest", "FastifyReply"} {
		if rule.IdentifierUsed(content, name) {
			needed = append(needed, name)
		}
	}
	if len(needed) == 0 {
		return nil, nil
	}

	m := fastifyImportRe.FindSubmatchIndex(content)
	if m == nil {
		off := rule.ImportInsertOffset(content)
		line := "import { " + strings.Join(needed, ", ") + " } from 'fastify';\n"
		return []rule.Edit{{Start: off, End: off, Text: line}}, nil
	}

	list := string(content[m[2]:m[3]])
	var names []string
	have := map[string]bool{}
	for _, p := range strings.Split(list, ",") {
		name := strings.TrimSpace(p)
		if name == "" {
			continue
		}
		names = append(names, name)
		have[name] = true
	}

	missing := false
	for _, name := range needed {
		if !have[name] {
			names = append(names, name)
			missing = true
		}
	}
	if !missing {
		return nil, nil
	}

	return []rule.Edit{{
		Start: m[2],
		End:   m[3],
		Text:  " " + strings.Join(names, ", ") + " ",
	}}, nil
}

// usesFastifyHelpers is the precondition for the import insertion: the
// file mentions the types at all.
func usesFastifyHelpers(path string, content []byte) bool {
	return bytes.Contains(content, []byte("Fastify"))
}
