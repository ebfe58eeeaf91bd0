package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errNotObject = errors.New("not a JSON object")

// JSONParser reads the keys of named dependency objects, as in package.json.
// A section that is an array contributes its strings and the "name" field of
// its objects, as in vcpkg.json.
type JSONParser struct {
	Sections []string
}

// NPMSections are the package.json dependency objects.
var NPMSections = []string{"dependencies", "devDependencies", "peerDependencies"}

func (JSONParser) Type() string { return "json" }

func (p JSONParser) Parse(text string) []string {
	out, _ := p.parseStrict(text)
	return out
}

func (p JSONParser) parseStrict(text string) ([]string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, err
	}

	sections := p.Sections
	if len(sections) == 0 {
		sections = NPMSections
	}

	var out []string
	for _, section := range sections {
		raw, ok := doc[section]
		if !ok {
			continue
		}
		out = append(out, jsonSectionNames(raw)...)
	}
	return out, nil
}

func jsonSectionNames(raw json.RawMessage) []string {
	var obj orderedKeys
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil
	}
	var out []string
	for _, item := range arr {
		var s string
		if json.Unmarshal(item, &s) == nil {
			out = append(out, s)
			continue
		}
		var named struct {
			Name string `json:"name"`
		}
		if json.Unmarshal(item, &named) == nil && named.Name != "" {
			out = append(out, named.Name)
		}
	}
	return out
}

// orderedKeys decodes a JSON object into its keys in document order.
type orderedKeys []string

func (k *orderedKeys) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errNotObject
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return err
		}
	}
	*k = keys
	return nil
}
