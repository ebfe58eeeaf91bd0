package manifest

import (
	"github.com/BurntSushi/toml"
)

// TOMLParser reads the keys of named top-level tables (Cargo.toml, Pipfile),
// the "name" field of named arrays of tables (Gopkg.toml), the PEP 621
// project.dependencies list and the tool.poetry.dependencies table.
type TOMLParser struct {
	Tables      []string
	ArrayTables []string
}

// DefaultTOMLTables covers Cargo and Pipfile dependency tables.
var DefaultTOMLTables = []string{
	"dependencies", "dev-dependencies", "build-dependencies",
	"packages", "dev-packages",
}

func (TOMLParser) Type() string { return "toml" }

func (p TOMLParser) Parse(text string) []string {
	out, _ := p.parseStrict(text)
	return out
}

func (p TOMLParser) parseStrict(text string) ([]string, error) {
	var doc map[string]any
	md, err := toml.Decode(text, &doc)
	if err != nil {
		return nil, err
	}

	tables := make(map[string]bool)
	for _, t := range p.Tables {
		tables[t] = true
	}

	var out []string
	// MetaData.Keys preserves document order.
	for _, key := range md.Keys() {
		switch {
		case len(key) == 2 && tables[key[0]]:
			out = append(out, key[1])
		case len(key) == 4 && key[0] == "tool" && key[1] == "poetry" && key[2] == "dependencies":
			out = append(out, key[3])
		}
	}

	for _, name := range p.ArrayTables {
		items, _ := doc[name].([]map[string]any)
		for _, item := range items {
			if s, ok := item["name"].(string); ok {
				out = append(out, s)
			}
		}
	}

	if project, ok := doc["project"].(map[string]any); ok {
		if list, ok := project["dependencies"].([]any); ok {
			for _, item := range list {
				if s, ok := item.(string); ok {
					out = append(out, requirementName(s))
				}
			}
		}
	}
	return out, nil
}
