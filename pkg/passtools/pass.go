package passtools

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Pass wraps the payload of GET /pass/{id}. Field accessors work on a local
// copy of passFields; nothing is written back to the server implicitly.
type Pass struct {
	raw     RawResponse
	valid   bool
	fields  map[string]Field
	members map[string]string
}

// NewPass wraps a response payload. The pass is valid unless the payload is
// an error payload.
func NewPass(raw RawResponse) *Pass {
	if raw == nil {
		raw = RawResponse{}
	}

	pass := &Pass{
		raw:     raw,
		valid:   !raw.IsError(),
		fields:  make(map[string]Field),
		members: make(map[string]string),
	}

	for key, entry := range cast.ToStringMap(raw["passFields"]) {
		pass.fields[key] = parseField(entry)
	}

	pass.assignMembers()

	return pass
}

// assignMembers maps member names to keys. When several keys share a member
// name, a key spelled exactly like the name wins, then the first key in sorted
// order. The other keys stay reachable under their API key only.
func (p *Pass) assignMembers() {
	keys := p.Keys()

	for _, key := range keys {
		if MemberName(key) == key {
			p.members[key] = key
		}
	}

	for _, key := range keys {
		name := MemberName(key)
		if _, taken := p.members[name]; !taken {
			p.members[name] = key
		}
	}
}

func parseField(entry interface{}) Field {
	values, ok := entry.(map[string]interface{})
	if !ok {
		return Field{Value: entry}
	}

	return Field{
		Value:    values["value"],
		Required: cast.ToBool(values["required"]),
	}
}

// MemberName converts an API field key such as "first_name" into the Go
// member name "FirstName".
func MemberName(key string) string {
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})

	for i, part := range parts {
		parts[i] = cases.Title(language.Und, cases.NoLower).String(part)
	}

	return strings.Join(parts, "")
}

// Valid reports whether the pass was built from a successful response.
func (p *Pass) Valid() bool {
	return p.valid
}

// RawData returns the payload the pass was built from.
func (p *Pass) RawData() RawResponse {
	return p.raw
}

// ID returns raw.id.
func (p *Pass) ID() int64 {
	return cast.ToInt64(p.raw["id"])
}

// TemplateID returns raw.templateId.
func (p *Pass) TemplateID() int64 {
	return cast.ToInt64(p.raw["templateId"])
}

// Keys returns the API keys of the field map, sorted.
func (p *Pass) Keys() []string {
	keys := make([]string, 0, len(p.fields))
	for key := range p.fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// AccessorName returns the name a field is reachable under: its member name,
// or the API key itself when another key owns that member name.
func (p *Pass) AccessorName(key string) string {
	name := MemberName(key)
	if p.members[name] == key {
		return name
	}

	return key
}

// FieldNames returns the accessor names of the field map, sorted.
func (p *Pass) FieldNames() []string {
	names := make([]string, 0, len(p.fields))
	for key := range p.fields {
		names = append(names, p.AccessorName(key))
	}

	sort.Strings(names)

	return names
}

// resolve maps an API key or member name to the API key.
func (p *Pass) resolve(name string) (string, bool) {
	if _, ok := p.fields[name]; ok {
		return name, true
	}

	key, ok := p.members[name]

	return key, ok
}

// Field returns the field for an API key ("first_name") or member name
// ("FirstName").
func (p *Pass) Field(name string) (Field, bool) {
	key, ok := p.resolve(name)
	if !ok {
		return Field{}, false
	}

	return p.fields[key], true
}

// SetField replaces a field. Only fields present in the payload can be set.
func (p *Pass) SetField(name string, field Field) error {
	key, ok := p.resolve(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	p.fields[key] = field

	return nil
}

// SetValue replaces the value of a field and keeps its required flag.
func (p *Pass) SetValue(name string, value interface{}) error {
	key, ok := p.resolve(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	field := p.fields[key]
	field.Value = value
	p.fields[key] = field

	return nil
}

// PassFields returns a copy of the field map keyed by API key.
func (p *Pass) PassFields() map[string]Field {
	fields := make(map[string]Field, len(p.fields))
	for key, field := range p.fields {
		fields[key] = field
	}

	return fields
}

// MarshalJSON writes the payload back with the current field map keyed by
// API key.
func (p *Pass) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(p.raw)+1)
	for key, value := range p.raw {
		out[key] = value
	}

	if len(p.fields) > 0 {
		out["passFields"] = p.PassFields()
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshaling pass: %w", err)
	}

	return data, nil
}
