package annotation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Delimiters of the fragment format. Saved files depend on these exact
// literals. No delimiter is a substring of another.
const (
	// OuterDelim opens and closes a whole fragment.
	OuterDelim = "/*CCL*/"

	// VarDelim surrounds the padded expression text.
	VarDelim = "/*CCL:VAR*/"

	// StringifyDelim surrounds the JSON copy of the expression text.
	StringifyDelim = "/*CCL:STR*/"

	// LineDelim surrounds the quoted "<line>:" label.
	LineDelim = "/*CCL:LINE*/"

	// IDSeparator brackets the annotation id.
	IDSeparator = "|"
)

// Delimiters lists every reserved literal.
var Delimiters = []string{OuterDelim, VarDelim, StringifyDelim, LineDelim}

const housekeeping = "/* Anything between the CCL comments is maintained by compactlog. " +
	"Do not edit it by hand; toggle the log off instead. */"

// fragmentFormat arguments: outer, id, var, payload, var, line, line meta,
// line, stringify, json, stringify, outer.
const fragmentFormat = `%s` + housekeeping + ` /* |%s| */ (() => { const tmp = %s %s %s; ` +
	`console.log("📢\x1b[90m", %s%s%s, "\x1b[36m\x1b[1m", %s%s%s, "\x1b[0m\x1b[90m=>\x1b[0m", tmp); ` +
	`return tmp;})()%s`

// Render builds the fragment for payload on the given 0-based line.
// payload should satisfy Validate; Render does not check it.
func Render(payload string, line int, id string) string {
	return fmt.Sprintf(fragmentFormat,
		OuterDelim,
		id,
		VarDelim, payload, VarDelim,
		LineDelim, LineMeta(line), LineDelim,
		StringifyDelim, Stringify(payload), StringifyDelim,
		OuterDelim,
	)
}

// Validate checks that payload can be rendered into a fragment that parses
// back to the same payload.
func Validate(payload string) error {
	if payload == "" {
		return ErrEmptyPayload
	}
	if strings.ContainsAny(payload, "\r\n") {
		return ErrMultiLine
	}
	for _, d := range Delimiters {
		if strings.Contains(payload, d) {
			return fmt.Errorf("%w: %s", ErrContainsDelimiter, d)
		}
	}
	return nil
}

// Stringify returns the JSON string literal of the trimmed text.
// HTML characters are left unescaped to match JavaScript's JSON.stringify,
// and trimming follows JavaScript's String.prototype.trim.
func Stringify(text string) string {
	text = strings.TrimFunc(text, isJSSpace)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(text); err != nil {
		// Encoding a string cannot fail.
		return strconv.Quote(text)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// isJSSpace reports whether r is ECMAScript white space or a line
// terminator. Unlike unicode.IsSpace it includes U+FEFF and excludes U+0085.
func isJSSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\u00a0', '\ufeff', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// LineMeta returns the quoted label for a 0-based line, e.g. "6:" for line 5.
func LineMeta(line int) string {
	return `"` + strconv.Itoa(line+1) + `:"`
}

// Bare strips the single padding space that Render places on each side of
// the expression text.
func Bare(varText string) string {
	s := strings.TrimPrefix(varText, " ")
	return strings.TrimSuffix(s, " ")
}
