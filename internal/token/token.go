package token

import "strings"

// Kind identifies the classification of a reference.
type Kind int

const (
	// KindNoToken means no vendor identifier could be extracted.
	KindNoToken Kind = iota
	// KindAlreadyLocal means the reference already names a local asset path.
	KindAlreadyLocal
	// KindToken means a vendor identifier was extracted.
	KindToken
)

func (k Kind) String() string {
	switch k {
	case KindAlreadyLocal:
		return "already_local"
	case KindToken:
		return "token"
	default:
		return "no_token"
	}
}

// Token is the canonical join key extracted from an external reference.
type Token struct {
	// Value is the vendor identifier with decorations removed.
	Value string
	// Extension includes the leading dot, e.g. ".jpg".
	Extension string
	// InnerExtension is the extension that preceded a decoration when the
	// vendor also appended a different trailing extension
	// ("X.png!300x300.jpg" has Extension ".jpg" and InnerExtension ".png").
	InnerExtension string
	// RawName is the last path segment of the reference as written, minus
	// query string and fragment.
	RawName string
	// Decorated reports whether a size decoration was stripped.
	Decorated bool
	// Rule names the extraction rule that matched.
	Rule string
}

// Filename returns the token joined with its extension.
func (t Token) Filename() string {
	return t.Value + t.Extension
}

// CacheKey returns a string that identifies every field the resolver reads.
func (t Token) CacheKey() string {
	var b strings.Builder
	b.Grow(len(t.Value) + len(t.RawName) + 16)
	b.WriteString(t.Value)
	b.WriteByte('|')
	b.WriteString(t.Extension)
	b.WriteByte('|')
	b.WriteString(t.InnerExtension)
	b.WriteByte('|')
	b.WriteString(t.RawName)
	if t.Decorated {
		b.WriteString("|d")
	}
	return b.String()
}

// Classification is the result of Extract.
type Classification struct {
	Kind  Kind
	Token Token
	// LocalPath is set for KindAlreadyLocal.
	LocalPath string
}
