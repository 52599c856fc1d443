// Package document parses fetched HTML into a read-only structure queried
// with CSS selectors.
//
// Rules depend on the Document and Node interfaces only. The implementation
// is backed by goquery, which builds on golang.org/x/net/html and tolerates
// malformed markup the way browsers do. Parsing never fails: input the
// tokenizer cannot handle produces an empty document.
package document
