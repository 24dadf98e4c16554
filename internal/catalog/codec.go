package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"photolink/internal/failure"
)

// Catalog is a loaded catalog file.
type Catalog struct {
	Path    string
	Records []Record
	// Raw is the file content as read; Commit refuses to replace a catalog
	// that no longer matches it.
	Raw  []byte
	Mode os.FileMode
}

// Load reads and decodes the catalog at path. A missing or malformed file is
// an input error.
func Load(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, failure.Wrap(failure.ErrInput, "catalog", "stat", "Catalog file unavailable", err)
	}
	if !info.Mode().IsRegular() {
		return nil, failure.Wrap(failure.ErrInput, "catalog", "stat", "Catalog path is not a regular file", fmt.Errorf("%s", path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, failure.Wrap(failure.ErrInput, "catalog", "read", "Catalog file unreadable", err)
	}
	records, err := Decode(data)
	if err != nil {
		return nil, failure.Wrap(failure.ErrInput, "catalog", "decode", "Catalog is not a JSON array of objects", err)
	}
	return &Catalog{Path: path, Records: records, Raw: data, Mode: info.Mode().Perm()}, nil
}

// Decode parses a JSON array of objects, keeping key order and raw values.
// A repeated key keeps its first position and its last value.
func Decode(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}
	var records []Record
	for dec.More() {
		rec, err := decodeObject(dec, data)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after catalog array")
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func decodeObject(dec *json.Decoder, data []byte) (Record, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return Record{}, err
	}
	rec := NewRecord()
	for dec.More() {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return Record{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Record{}, fmt.Errorf("expected object key, got %v", tok)
		}
		// The span runs from the end of the previous value (or the opening
		// brace) to the key's closing quote.
		quoted := bytes.TrimLeft(data[start:dec.InputOffset()], " \t\r\n,")
		rec.setQuoted(key, quoted)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return Record{}, fmt.Errorf("value of %q: %w", key, err)
		}
		rec.SetRaw(key, raw)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// Encode renders records as a JSON array, one key per line. Raw values are
// written exactly as stored, so unchanged input encodes to the same bytes on
// every run.
func Encode(records []Record) []byte {
	var buf bytes.Buffer
	if len(records) == 0 {
		buf.WriteString("[]\n")
		return buf.Bytes()
	}
	buf.WriteString("[\n")
	for i, rec := range records {
		if len(rec.keys) == 0 {
			buf.WriteString("  {}")
		} else {
			buf.WriteString("  {\n")
			for j, key := range rec.keys {
				buf.WriteString("    ")
				buf.Write(rec.quotedKey(key))
				buf.WriteString(": ")
				buf.Write(rec.values[key])
				if j < len(rec.keys)-1 {
					buf.WriteByte(',')
				}
				buf.WriteByte('\n')
			}
			buf.WriteString("  }")
		}
		if i < len(records)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("]\n")
	return buf.Bytes()
}
