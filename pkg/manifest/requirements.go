package manifest

import (
	"bufio"
	"strings"
)

// RequirementsParser reads pip requirements files: one requirement per line,
// '#' comments, the name ending at the first version or marker character.
type RequirementsParser struct{}

func (RequirementsParser) Type() string { return "requirements" }

func (RequirementsParser) Parse(text string) []string {
	var out []string
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == '-' {
			continue
		}
		if strings.Contains(line, "://") || strings.HasPrefix(line, "git+") {
			continue
		}
		if name := requirementName(line); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// requirementName truncates a PEP 508 style requirement at the first
// version-operator, extras, marker or whitespace character.
func requirementName(spec string) string {
	spec = strings.TrimSpace(spec)
	if i := strings.IndexAny(spec, "<=>~!;[ \t#@"); i >= 0 {
		spec = spec[:i]
	}
	return strings.TrimSpace(spec)
}
