package manifest

import "regexp"

var plainTokenRE = regexp.MustCompile(`[A-Za-z0-9_\-.]+`)

// PlainParser returns every identifier-like token. It is the catch-all for
// build scripts (Makefile, CMakeLists.txt, build.gradle) whose dependency
// syntax is not worth modelling.
type PlainParser struct{}

func (PlainParser) Type() string { return "plain" }

func (PlainParser) Parse(text string) []string {
	return plainTokenRE.FindAllString(text, -1)
}
