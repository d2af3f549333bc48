// internal/models/tag.go
package models

import (
	"bytes"
	"encoding/json"
)

// TagKind distinguishes the representations a stored tag can have.
type TagKind uint8

const (
	TagMalformed TagKind = iota
	TagPlain
	TagAnnotated
)

func (k TagKind) String() string {
	switch k {
	case TagPlain:
		return "plain"
	case TagAnnotated:
		return "annotated"
	default:
		return "malformed"
	}
}

// Tag is a categorical label on an application. Documents store tags either
// as bare strings or as {"tag": ..., "isSpecial": ...} objects; both are
// normalised into this type on decode. Anything else decodes as a malformed
// tag that keeps its raw bytes for diagnostics.
type Tag struct {
	kind    TagKind
	name    string
	special bool
	raw     json.RawMessage
}

// PlainTag builds a tag from a bare string.
func PlainTag(name string) Tag {
	return Tag{kind: TagPlain, name: name}
}

// AnnotatedTag builds a tag that carries the special marker.
func AnnotatedTag(name string, isSpecial bool) Tag {
	return Tag{kind: TagAnnotated, name: name, special: isSpecial}
}

// MalformedTag wraps an entry that is neither a string nor a tag object.
func MalformedTag(raw json.RawMessage) Tag {
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return Tag{kind: TagMalformed, raw: cp}
}

func (t Tag) Kind() TagKind        { return t.kind }
func (t Tag) Name() string         { return t.name }
func (t Tag) IsSpecial() bool      { return t.special }
func (t Tag) Valid() bool          { return t.kind != TagMalformed }
func (t Tag) Raw() json.RawMessage { return t.raw }

type annotatedTagJSON struct {
	Tag       string `json:"tag"`
	IsSpecial bool   `json:"isSpecial"`
}

func (t *Tag) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		*t = MalformedTag(nil)
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			*t = MalformedTag(trimmed)
			return nil
		}
		*t = PlainTag(s)
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			*t = MalformedTag(trimmed)
			return nil
		}
		var name string
		rawName, ok := fields["tag"]
		if !ok || json.Unmarshal(rawName, &name) != nil {
			*t = MalformedTag(trimmed)
			return nil
		}
		var special bool
		if rawSpecial, ok := fields["isSpecial"]; ok {
			_ = json.Unmarshal(rawSpecial, &special)
		}
		*t = AnnotatedTag(name, special)
	default:
		*t = MalformedTag(trimmed)
	}
	return nil
}

func (t Tag) MarshalJSON() ([]byte, error) {
	switch t.kind {
	case TagPlain:
		return json.Marshal(t.name)
	case TagAnnotated:
		return json.Marshal(annotatedTagJSON{Tag: t.name, IsSpecial: t.special})
	default:
		if len(t.raw) == 0 {
			return []byte("null"), nil
		}
		return t.raw, nil
	}
}

// TagList is the tags field of an application. A value that is not a JSON
// array decodes to an empty list.
type TagList []Tag

func (l *TagList) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		*l = nil
		return nil
	}

	var tags []Tag
	if err := json.Unmarshal(trimmed, &tags); err != nil {
		*l = nil
		return nil
	}
	*l = tags
	return nil
}

// Names returns the names of all well-formed tags, in order.
func (l TagList) Names() []string {
	names := make([]string, 0, len(l))
	for _, t := range l {
		if t.Valid() {
			names = append(names, t.name)
		}
	}
	return names
}

// PlainTags is a convenience for building a list of bare-string tags.
func PlainTags(names ...string) TagList {
	l := make(TagList, len(names))
	for i, n := range names {
		l[i] = PlainTag(n)
	}
	return l
}
