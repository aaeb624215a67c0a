// Package annotation implements the text codec for embedded log probes.
//
// A log probe is a single-line JavaScript fragment that wraps an expression
// in an immediately invoked function, prints the expression's value together
// with its source line, and returns the value unchanged. The fragment carries
// its own metadata between fixed comment delimiters so that it can be found
// and re-parsed from plain document text at any time:
//
//	/*CCL*/ ... /* |<id>| */ (() => { const tmp = /*CCL:VAR*/ expr /*CCL:VAR*/;
//	console.log(..., /*CCL:LINE*/"6:"/*CCL:LINE*/, ..., /*CCL:STR*/"expr"/*CCL:STR*/, ..., tmp);
//	return tmp;})()/*CCL*/
//
// (shown wrapped; a rendered fragment is always one line).
//
// Parsing is a pure function of the line text. There is no incremental
// state: every sub-range is recomputed from segment lengths, so the result is
// correct immediately after any edit. Bodies that are missing a delimiter
// pair are not annotations and are skipped.
//
// The delimiters have no escaping mechanism. Validate rejects payload text
// that contains any of them, which keeps every rendered fragment parseable.
package annotation
