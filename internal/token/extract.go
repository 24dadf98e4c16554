package token

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

const (
	// DefaultLocalPrefix is the storefront path under which local assets are served.
	DefaultLocalPrefix = "/images/"
	// DefaultExtension is used when a reference carries no extension.
	DefaultExtension = ".jpg"
	// DefaultMinTokenLength is the shortest identifier the loosest rule accepts.
	DefaultMinTokenLength = 18
)

// decorationPattern matches thumbnail size suffixes appended by the vendor CDN.
var decorationPattern = regexp.MustCompile(`![0-9]+x[0-9]+`)

var extensionPattern = regexp.MustCompile(`\.[A-Za-z0-9]{1,5}$`)

type rule struct {
	name    string
	pattern *regexp.Regexp
}

// Options configures an Extractor.
type Options struct {
	LocalPrefix      string
	DefaultExtension string
	MinTokenLength   int
}

// Extractor classifies references. It is immutable and safe for concurrent use.
type Extractor struct {
	localPrefix string
	defaultExt  string
	rules       []rule
}

// NewExtractor builds an extractor, filling unset options with defaults.
func NewExtractor(opts Options) (*Extractor, error) {
	prefix := strings.TrimSpace(opts.LocalPrefix)
	if prefix == "" {
		prefix = DefaultLocalPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	ext := strings.TrimSpace(opts.DefaultExtension)
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	minLen := opts.MinTokenLength
	if minLen <= 0 {
		minLen = DefaultMinTokenLength
	}
	if minLen < 4 {
		return nil, fmt.Errorf("min token length %d is too short to identify an image", minLen)
	}
	return &Extractor{
		localPrefix: prefix,
		defaultExt:  ext,
		rules:       buildRules(minLen),
	}, nil
}

// buildRules returns the extraction rules, most specific first. No rule
// accepts a token shorter than minLen.
func buildRules(minLen int) []rule {
	const body = `[A-Za-z0-9_-]`
	vendor := func(name, prefix string, least int) rule {
		least = max(least, minLen-len(prefix))
		return rule{name: name, pattern: regexp.MustCompile(fmt.Sprintf(`%s%s{%d,}`, prefix, body, least))}
	}
	rules := []rule{
		vendor("vendor_full", "ABUIAB", 24),
		vendor("vendor_prefix", "AB", 24),
	}
	if loose := minLen - 2; loose < 24 {
		rules = append(rules, vendor("vendor_loose", "AB", loose))
	}
	return rules
}

// LocalPrefix returns the local asset namespace prefix, with trailing slash.
func (e *Extractor) LocalPrefix() string {
	return e.localPrefix
}

// IsLocal reports whether ref already names a path in the local namespace.
func (e *Extractor) IsLocal(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}
	if strings.HasPrefix(ref, e.localPrefix) {
		return true
	}
	return strings.HasPrefix("/"+ref, e.localPrefix)
}

// Extract classifies ref.
func (e *Extractor) Extract(ref string) Classification {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Classification{Kind: KindNoToken}
	}
	if e.IsLocal(ref) {
		return Classification{Kind: KindAlreadyLocal, LocalPath: ref}
	}

	rawName := lastSegment(ref)
	if rawName == "" {
		return Classification{Kind: KindNoToken}
	}

	// The identifier normally lives in the filename; some CDN links carry it
	// in an earlier segment or a query parameter instead.
	sources := []string{rawName}
	if ref != rawName {
		sources = append(sources, ref)
	}
	for _, r := range e.rules {
		for _, src := range sources {
			value := r.pattern.FindString(src)
			if value == "" {
				continue
			}
			return Classification{Kind: KindToken, Token: e.buildToken(r.name, value, rawName, src)}
		}
	}
	return Classification{Kind: KindNoToken}
}

func (e *Extractor) buildToken(ruleName, value, rawName, src string) Token {
	tok := Token{
		Value:   value,
		RawName: rawName,
		Rule:    ruleName,
	}
	name := rawName
	if !strings.Contains(rawName, value) {
		name = src
	}
	undecorated := name
	if decorationPattern.MatchString(name) {
		tok.Decorated = true
		before, _, _ := strings.Cut(name[strings.Index(name, value):], "!")
		tok.InnerExtension = extensionPattern.FindString(before)
		undecorated = decorationPattern.ReplaceAllString(name, "")
	}
	tok.Extension = e.trailingExtension(undecorated, value)
	if strings.EqualFold(tok.InnerExtension, tok.Extension) {
		tok.InnerExtension = ""
	}
	return tok
}

// trailingExtension returns the extension following the token, or the default.
func (e *Extractor) trailingExtension(name, value string) string {
	idx := strings.Index(name, value)
	if idx < 0 {
		return e.defaultExt
	}
	rest := name[idx+len(value):]
	if strings.ContainsAny(rest, "/?&=#") {
		return e.defaultExt
	}
	if ext := extensionPattern.FindString(rest); ext != "" {
		return ext
	}
	return e.defaultExt
}

// lastSegment returns the final path segment of ref without query or fragment.
func lastSegment(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	ref = strings.TrimRight(ref, "/")
	if ref == "" {
		return ""
	}
	return path.Base(ref)
}

// StripDecorations removes every size decoration from name.
func StripDecorations(name string) string {
	return decorationPattern.ReplaceAllString(name, "")
}
