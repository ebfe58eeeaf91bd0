package manifest

import (
	"strings"

	"github.com/go-ini/ini"
)

// INIParser reads a multi-line list field of one section, as in tox.ini's
// [testenv] deps.
type INIParser struct {
	Section string
	Field   string
}

func (INIParser) Type() string { return "ini" }

func (p INIParser) Parse(text string) []string {
	out, _ := p.parseStrict(text)
	return out
}

func (p INIParser) parseStrict(text string) ([]string, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		SkipUnrecognizableLines:    true,
	}, []byte(text))
	if err != nil {
		return nil, err
	}

	section, field := p.Section, p.Field
	if section == "" {
		section = "testenv"
	}
	if field == "" {
		field = "deps"
	}

	sec, err := cfg.GetSection(section)
	if err != nil {
		return nil, nil
	}
	if !sec.HasKey(field) {
		return nil, nil
	}

	var out []string
	for _, line := range strings.Split(sec.Key(field).String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		// tox substitutions such as {[base]deps} are not names.
		if strings.HasPrefix(line, "{") {
			continue
		}
		out = append(out, requirementName(line))
	}
	return out, nil
}
