package manifest

import (
	"encoding/xml"
	"strings"
)

type pomProject struct {
	Dependencies         []pomDependency `xml:"dependencies>dependency"`
	DependencyManagement struct {
		Dependencies []pomDependency `xml:"dependencies>dependency"`
	} `xml:"dependencyManagement"`
	Build struct {
		Plugins []pomDependency `xml:"plugins>plugin"`
	} `xml:"build"`
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

// POMParser reads Maven pom.xml dependency artifactIds, including managed
// dependencies. Build plugins are included when Plugins is set.
type POMParser struct {
	Plugins bool
}

func (POMParser) Type() string { return "pom" }

func (p POMParser) Parse(text string) []string {
	out, _ := p.parseStrict(text)
	return out
}

func (p POMParser) parseStrict(text string) ([]string, error) {
	var pom pomProject
	if err := xml.Unmarshal([]byte(text), &pom); err != nil {
		return nil, err
	}

	var out []string
	add := func(list []pomDependency) {
		for _, d := range list {
			// Unresolved ${...} properties are not names.
			if id := strings.TrimSpace(d.ArtifactID); id != "" && !strings.Contains(id, "${") {
				out = append(out, id)
			}
		}
	}
	add(pom.Dependencies)
	add(pom.DependencyManagement.Dependencies)
	if p.Plugins {
		add(pom.Build.Plugins)
	}
	return out, nil
}
