// Package main provides the entry point for the shopaudit CLI.
//
// shopaudit audits the on-page SEO of e-commerce storefront pages: it
// fetches a page, runs a fixed rule set over its HTML and reports a score,
// the issues found and a prioritized action plan.
//
// Usage:
//
//	shopaudit audit <url>...
//	shopaudit serve --addr :8080
//
// See --help for all available options.
package main

func main() {
	Execute()
}
