package fingerprint

import "strings"

// Structural markers derived from the root directory listing.
const (
	MarkerTests   = "has_tests"
	MarkerDocker  = "dockerized"
	MarkerCI      = "ci_configured"
	MarkerDocs    = "has_docs"
	MarkerLicense = "has_license"
)

type markerRule struct {
	marker   string
	prefixes []string
	suffixes []string
}

var ciFiles = []string{
	".github/", ".gitlab-ci", ".circleci/", "jenkinsfile", ".travis.yml",
	"azure-pipelines", ".drone.yml", "bitbucket-pipelines",
}

// markerRules is evaluated in order; the output keeps this order.
var markerRules = []markerRule{
	{
		marker:   MarkerTests,
		prefixes: []string{"test", "__tests__/", "spec/", "conftest.py", "pytest.ini", "jest.config", "karma.conf"},
		suffixes: []string{"_test.go", "_test.py", ".test.js", ".test.ts", ".spec.js", ".spec.ts"},
	},
	{
		marker:   MarkerDocker,
		prefixes: []string{"dockerfile", "docker-compose", "compose.yml", "compose.yaml", ".dockerignore"},
		suffixes: []string{".dockerfile"},
	},
	{
		marker:   MarkerCI,
		prefixes: ciFiles,
	},
	{
		marker:   MarkerDocs,
		prefixes: []string{"docs/", "doc/", "mkdocs.yml", "documentation/"},
	},
	{
		marker:   MarkerLicense,
		prefixes: []string{"license", "licence", "copying"},
	},
}

// Markers matches the root listing against the rule set, case-insensitively.
func Markers(listing []string) []string {
	out := []string{}
	for _, rule := range markerRules {
		for _, entry := range listing {
			if rule.matches(strings.ToLower(entry)) {
				out = append(out, rule.marker)
				break
			}
		}
	}
	return out
}

func (r markerRule) matches(entry string) bool {
	for _, p := range r.prefixes {
		if strings.HasPrefix(entry, p) {
			return true
		}
	}
	for _, s := range r.suffixes {
		if strings.HasSuffix(entry, s) {
			return true
		}
	}
	return false
}
