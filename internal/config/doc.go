// Package config provides configuration structures and utilities for ShopAudit.
// It defines the fetch settings, the rule thresholds that drive the audit
// engine, per-site request overrides loaded from a YAML file, and the
// options of the HTTP server.
package config
