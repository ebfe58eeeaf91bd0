package manifest

import (
	"bufio"
	"strings"

	"golang.org/x/mod/modfile"
)

// GoModParser reads require paths from go.mod. With Sum set it reads module
// paths from go.sum instead.
type GoModParser struct {
	Sum bool
}

func (p GoModParser) Type() string {
	if p.Sum {
		return "gosum"
	}
	return "gomod"
}

func (p GoModParser) Parse(text string) []string {
	out, _ := p.parseStrict(text)
	return out
}

func (p GoModParser) parseStrict(text string) ([]string, error) {
	if p.Sum {
		return parseGoSum(text), nil
	}
	f, err := modfile.ParseLax("go.mod", []byte(text), nil)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(f.Require))
	for _, r := range f.Require {
		out = append(out, r.Mod.Path)
	}
	return out, nil
}

func parseGoSum(text string) []string {
	var out []string
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) >= 2 {
			out = append(out, fields[0])
		}
	}
	return out
}
