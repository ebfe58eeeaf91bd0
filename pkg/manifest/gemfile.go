package manifest

import (
	"bufio"
	"regexp"
	"strings"
)

// gemRE matches Gemfile `gem "name"` lines and gemspec
// `spec.add_dependency "name"` variants.
var gemRE = regexp.MustCompile(`^\s*(?:gem|\w+\.add_(?:runtime_|development_)?dependency)\s*\(?\s*["']([^"']+)["']`)

// GemfileParser reads gem names from Gemfile and *.gemspec files.
type GemfileParser struct{}

func (GemfileParser) Type() string { return "gemfile" }

func (GemfileParser) Parse(text string) []string {
	var out []string
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		if m := gemRE.FindStringSubmatch(line); m != nil {
			out = append(out, m[1])
		}
	}
	return out
}
