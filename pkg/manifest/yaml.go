package manifest

import (
	"gopkg.in/yaml.v3"
)

// YAMLParser reads top-level dependency keys of YAML manifests
// (environment.yml, glide.yaml). Lists contribute their string items and,
// for mapping items, the "package"/"name" field or the mapping keys; mappings
// contribute their keys.
type YAMLParser struct {
	Keys []string
}

// DefaultYAMLKeys covers conda environments and glide.
var DefaultYAMLKeys = []string{"dependencies", "packages", "requirements", "import"}

func (YAMLParser) Type() string { return "yaml" }

func (p YAMLParser) Parse(text string) []string {
	out, _ := p.parseStrict(text)
	return out
}

func (p YAMLParser) parseStrict(text string) ([]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(text), &root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, nil
	}

	keys := p.Keys
	if len(keys) == 0 {
		keys = DefaultYAMLKeys
	}

	var out []string
	for _, want := range keys {
		for i := 0; i+1 < len(doc.Content); i += 2 {
			if doc.Content[i].Value != want {
				continue
			}
			out = append(out, yamlNames(doc.Content[i+1])...)
		}
	}
	return out, nil
}

func yamlNames(n *yaml.Node) []string {
	var out []string
	switch n.Kind {
	case yaml.SequenceNode:
		for _, item := range n.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				out = append(out, condaName(item.Value))
			case yaml.MappingNode:
				out = append(out, yamlItemNames(item)...)
			}
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			out = append(out, n.Content[i].Value)
		}
	}
	return out
}

// yamlItemNames handles mapping list items: {package: x} and {name: x} name
// one dependency; anything else (e.g. conda's {pip: [...]}) is a nested group.
func yamlItemNames(item *yaml.Node) []string {
	for i := 0; i+1 < len(item.Content); i += 2 {
		k, v := item.Content[i].Value, item.Content[i+1]
		if (k == "package" || k == "name") && v.Kind == yaml.ScalarNode {
			return []string{v.Value}
		}
	}
	var out []string
	for i := 0; i+1 < len(item.Content); i += 2 {
		v := item.Content[i+1]
		if v.Kind == yaml.SequenceNode {
			out = append(out, yamlNames(v)...)
		} else {
			out = append(out, item.Content[i].Value)
		}
	}
	return out
}

// condaName strips conda ("numpy=1.24") and pip ("requests>=2") version pins.
func condaName(spec string) string {
	return requirementName(spec)
}
