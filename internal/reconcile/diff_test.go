package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffIdenticalIsEmpty(t *testing.T) {
	d := Diff([]byte("a\nb\n"), []byte("a\nb\n"), "products.json", 2)
	assert.True(t, d.Empty())
	assert.Empty(t, d.Text)
}

func TestDiffShowsChangedLinesWithContext(t *testing.T) {
	before := "l1\nl2\nl3\nold\nl5\nl6\nl7\n"
	after := "l1\nl2\nl3\nnew\nl5\nl6\nl7\n"

	d := Diff([]byte(before), []byte(after), "products.json", 1)

	assert.Equal(t, 1, d.Added)
	assert.Equal(t, 1, d.Deleted)
	assert.Equal(t, "--- a/products.json\n+++ b/products.json\n@@ -3 +3 @@\n l3\n-old\n+new\n l5\n", d.Text)
}

func TestDiffSeparatesDistantHunks(t *testing.T) {
	before := "a\nx\nb\nc\nd\ne\nf\ny\ng\n"
	after := "a\nX\nb\nc\nd\ne\nf\nY\ng\n"

	d := Diff([]byte(before), []byte(after), "c.json", 0)

	assert.Equal(t, 2, d.Added)
	assert.Equal(t, "--- a/c.json\n+++ b/c.json\n@@ -2 +2 @@\n-x\n+X\n@@ -8 +8 @@\n-y\n+Y\n", d.Text)
}
