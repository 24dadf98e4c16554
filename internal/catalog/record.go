package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Owned keys.
const (
	KeyID         = "id"
	KeyName       = "name"
	KeyImage      = "image"
	KeyImages     = "images"
	KeyOriginal   = "original_image"
	KeyProvenance = "image_match"
)

// Record is one product object. Values are raw JSON; key order is preserved.
// A Record is treated as immutable once built: setters return nothing but are
// only ever called on a Clone.
type Record struct {
	keys   []string
	values map[string]json.RawMessage
	// quoted holds each decoded key as written, escapes included.
	quoted map[string][]byte
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{values: map[string]json.RawMessage{}}
}

// Keys returns the keys in document order.
func (r Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Raw returns the raw JSON value stored under key.
func (r Record) Raw(key string) (json.RawMessage, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Clone returns a record that can be modified without affecting r.
func (r Record) Clone() Record {
	out := Record{
		keys:   append([]string(nil), r.keys...),
		values: make(map[string]json.RawMessage, len(r.values)),
		quoted: r.quoted,
	}
	for k, v := range r.values {
		out.values[k] = v
	}
	return out
}

// SetRaw stores value under key, appending the key when new.
func (r *Record) SetRaw(key string, value json.RawMessage) {
	if r.values == nil {
		r.values = map[string]json.RawMessage{}
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Set marshals value and stores it under key.
func (r *Record) Set(key string, value any) error {
	raw, err := marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	r.SetRaw(key, raw)
	return nil
}

// String returns the value under key when it is a JSON string.
func (r Record) String(key string) (string, bool) {
	raw, ok := r.values[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Strings returns the value under key when it is an array of strings. A JSON
// null reads as an empty, present array.
func (r Record) Strings(key string) ([]string, bool) {
	raw, ok := r.values[key]
	if !ok {
		return nil, false
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

// ID renders the identifier for reports and logs. Strings are unquoted; any
// other JSON value is returned as written.
func (r Record) ID() string {
	if s, ok := r.String(KeyID); ok {
		return s
	}
	raw, ok := r.values[KeyID]
	if !ok {
		return ""
	}
	return string(bytes.TrimSpace(raw))
}

// Name returns the display name, if any.
func (r Record) Name() string {
	s, _ := r.String(KeyName)
	return s
}

// Image returns the current primary image reference.
func (r Record) Image() string {
	s, _ := r.String(KeyImage)
	return s
}

// OriginalImage returns the write-once original reference.
func (r Record) OriginalImage() string {
	s, _ := r.String(KeyOriginal)
	return s
}

// SourceRef returns the reference the extractor should classify. A record
// sitting on the placeholder, or never given an image, is retried from its
// original reference so newly downloaded assets are picked up.
func (r Record) SourceRef(placeholder string) string {
	image := r.Image()
	if image == "" || (placeholder != "" && image == placeholder) {
		return r.OriginalImage()
	}
	return image
}

// Provenance decodes the image_match object.
func (r Record) Provenance() (Provenance, bool) {
	raw, ok := r.values[KeyProvenance]
	if !ok {
		return Provenance{}, false
	}
	var p Provenance
	if err := json.Unmarshal(raw, &p); err != nil {
		return Provenance{}, false
	}
	return p, true
}

// DiffKeys lists keys whose raw value differs between a and b, in b's order
// followed by keys only present in a.
func DiffKeys(a, b Record) []string {
	var out []string
	for _, k := range b.keys {
		av, ok := a.values[k]
		if !ok || !bytes.Equal(av, b.values[k]) {
			out = append(out, k)
		}
	}
	for _, k := range a.keys {
		if _, ok := b.values[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

// marshal encodes without HTML escaping so paths and URLs stay readable.
func marshal(value any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// setQuoted remembers how key was written in the source document. The first
// spelling of a repeated key wins, matching its kept position.
func (r *Record) setQuoted(key string, quoted []byte) {
	if r.quoted == nil {
		r.quoted = map[string][]byte{}
	}
	if _, ok := r.quoted[key]; !ok {
		r.quoted[key] = quoted
	}
}

// quotedKey returns key as it was written when decoded, or freshly quoted.
func (r Record) quotedKey(key string) []byte {
	if q, ok := r.quoted[key]; ok {
		return q
	}
	return quoteKey(key)
}

func quoteKey(key string) []byte {
	raw, err := marshal(key)
	if err != nil {
		return []byte(strconv.Quote(key))
	}
	return raw
}
