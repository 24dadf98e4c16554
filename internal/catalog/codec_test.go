package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photolink/internal/failure"
)

const mixedCatalog = `[
  {"id": 7, "sku":"X-1", "name": "Teapot",
   "image": "https://img.example.cn/ABUIABACGAAgw67ovwYoy-e26QcwoAY4oAY!300x300.jpg",
   "price": 12345678901234567890.50,
   "attrs": {"b": 1,   "a": [1, 2 ,3]},
   "note": "café <b>"},
  {"name": "No id"}
]`

func TestDecodeKeepsKeyOrderAndRawValues(t *testing.T) {
	records, err := Decode([]byte(mixedCatalog))
	require.NoError(t, err)
	require.Len(t, records, 2)

	rec := records[0]
	assert.Equal(t, []string{"id", "sku", "name", "image", "price", "attrs", "note"}, rec.Keys())

	raw, ok := rec.Raw("attrs")
	require.True(t, ok)
	assert.Equal(t, `{"b": 1,   "a": [1, 2 ,3]}`, string(raw))
	raw, _ = rec.Raw("price")
	assert.Equal(t, `12345678901234567890.50`, string(raw))
	raw, _ = rec.Raw("note")
	assert.Equal(t, `"café <b>"`, string(raw))

	assert.Equal(t, "7", rec.ID())
	assert.Equal(t, "Teapot", rec.Name())
	assert.Equal(t, "", records[1].ID())
}

func TestEncodeRoundTripsUnknownFieldsBitForBit(t *testing.T) {
	records, err := Decode([]byte(mixedCatalog))
	require.NoError(t, err)

	encoded := Encode(records)
	again, err := Decode(encoded)
	require.NoError(t, err)
	require.Len(t, again, len(records))

	for i := range records {
		assert.Equal(t, records[i].Keys(), again[i].Keys())
		for _, k := range records[i].Keys() {
			want, _ := records[i].Raw(k)
			got, _ := again[i].Raw(k)
			assert.Equal(t, string(want), string(got), "record %d key %s", i, k)
		}
	}
	assert.Equal(t, encoded, Encode(again), "encoding must be stable")
}

func TestEncodeKeepsEscapedKeysAsWritten(t *testing.T) {
	input := `[{"caf\u00e9": 1, "a\/b" : "x", "plain":true}]`
	records, err := Decode([]byte(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"café", "a/b", "plain"}, records[0].Keys())

	encoded := string(Encode(records))
	assert.Contains(t, encoded, `"caf\u00e9": 1`)
	assert.Contains(t, encoded, `"a\/b": "x"`)
	assert.Contains(t, encoded, `"plain": true`)

	next := records[0].Clone()
	require.NoError(t, next.Set("image", "/images/a.jpg"))
	encoded = string(Encode([]Record{next}))
	assert.Contains(t, encoded, `"caf\u00e9": 1`)
	assert.Contains(t, encoded, `"image": "/images/a.jpg"`)
}

func TestEncodeEmpty(t *testing.T) {
	assert.Equal(t, "[]\n", string(Encode(nil)))
	records, err := Decode([]byte(" [ ] "))
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, "[\n  {}\n]\n", string(Encode([]Record{NewRecord()})))
}

func TestDecodeRejectsMalformedCatalogs(t *testing.T) {
	for name, body := range map[string]string{
		"object root":    `{"id": 1}`,
		"scalar element": `[1, 2]`,
		"truncated":      `[{"id": 1}`,
		"trailing data":  `[{"id": 1}] []`,
		"empty":          ``,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestDecodeDuplicateKeyKeepsFirstPositionLastValue(t *testing.T) {
	records, err := Decode([]byte(`[{"a": 1, "b": 2, "a": 3}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, records[0].Keys())
	raw, _ := records[0].Raw("a")
	assert.Equal(t, "3", string(raw))
}

func TestLoadClassifiesInputErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, failure.ErrInput)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, failure.ErrInput)

	_, err = Load(dir)
	assert.ErrorIs(t, err, failure.ErrInput)

	good := filepath.Join(dir, "products.json")
	require.NoError(t, os.WriteFile(good, []byte(mixedCatalog), 0o640))
	cat, err := Load(good)
	require.NoError(t, err)
	assert.Len(t, cat.Records, 2)
	assert.Equal(t, mixedCatalog, string(cat.Raw))
	assert.Equal(t, os.FileMode(0o640), cat.Mode)
}

func TestSetDoesNotEscapeHTML(t *testing.T) {
	rec := NewRecord()
	require.NoError(t, rec.Set("image", "/images/a&b<c>.jpg"))
	raw, _ := rec.Raw("image")
	assert.Equal(t, `"/images/a&b<c>.jpg"`, string(raw))
	assert.True(t, strings.HasPrefix(string(Encode([]Record{rec})), "[\n  {\n    \"image\": "))
}
