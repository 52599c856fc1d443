package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys whose values are always masked.
var sensitiveKeys = map[string]bool{
	// HTTP headers
	"authorization":          true,
	"cookie":                 true,
	"set-cookie":             true,
	"x-api-key":              true,
	"x-shopify-access-token": true,
	"proxy-authorization":    true,

	// Storefront access
	"storefront_digest":   true,
	"storefront_password": true,

	// Premium export
	"premium_token": true,
	"session_id":    true,
	"sessionid":     true,
	"sid":           true,
}

// sensitiveKeywords mark a key as sensitive when contained anywhere in it.
// The bare word "key" is left out because it matches too much ("monkey", "primary_key").
var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "auth", "credential", "cookie", "session",
}

// sensitivePatterns are value patterns masked regardless of key.
var sensitivePatterns = []*regexp.Regexp{
	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
	// Bearer and basic credentials
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
	// Platform admin API tokens
	regexp.MustCompile(`^shp(at|ca|pa|ss)_[a-fA-F0-9]{16,}$`),
	// Payment provider secret keys
	regexp.MustCompile(`^(sk|rk)_(live|test)_[A-Za-z0-9]{8,}$`),
	// Long opaque keys
	regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`),
}

// sensitiveQueryParams are URL query parameters whose values are masked.
var sensitiveQueryParams = []string{"token", "key", "password", "signature", "sig", "session_id", "access_token"}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// SecureHandler wraps an slog.Handler and masks secrets before records reach it.
// Keys and values are checked: a sensitive key masks the whole value, a
// sensitive value is masked under any key, and URLs keep their shape with
// only the credential parts replaced.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler masks records before passing them to handler, or to
// slog.Default's handler when handler is nil.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle forwards a copy of r whose attributes have been masked.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	masked.AddAttrs(maskAttrs(attrs)...)
	return h.handler.Handle(ctx, masked)
}

func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SecureHandler{handler: h.handler.WithAttrs(maskAttrs(attrs))}
}

func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

func maskAttrs(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = maskAttr(a)
	}
	return out
}

func maskAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	switch {
	case a.Value.Kind() == slog.KindGroup:
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(maskAttrs(a.Value.Group())...)}
	case isSensitiveKey(a.Key):
		return slog.String(a.Key, MaskValue)
	case a.Value.Kind() != slog.KindString:
		return a
	}

	value := a.Value.String()
	if isSensitiveValue(value) {
		return slog.String(a.Key, MaskValue)
	}
	if redacted, ok := RedactURL(value); ok {
		return slog.String(a.Key, redacted)
	}
	return a
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	if sensitiveKeys[key] {
		return true
	}
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// RedactURL masks the password of an absolute http(s) URL and the values
// of credential-like query parameters. ok is false when value is not such
// a URL or carries nothing to mask.
func RedactURL(value string) (redacted string, ok bool) {
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return "", false
	}
	u, err := url.Parse(value)
	if err != nil {
		return "", false
	}

	changed := false
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), MaskValue)
			changed = true
		}
	}

	if u.RawQuery != "" {
		query := u.Query()
		for name := range query {
			if isSensitiveParam(name) {
				query.Set(name, MaskValue)
				changed = true
			}
		}
		if changed {
			u.RawQuery = query.Encode()
		}
	}

	if !changed {
		return "", false
	}
	return u.String(), true
}

func isSensitiveParam(name string) bool {
	name = strings.ToLower(name)
	for _, param := range sensitiveQueryParams {
		if name == param || strings.HasSuffix(name, "_"+param) {
			return true
		}
	}
	return false
}

// NewSecureLogger creates a text logger writing to w with secret masking.
// verbose selects Debug level, otherwise Warn.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewSecureJSONLogger creates a JSON logger writing to w with secret masking.
// verbose selects Debug level, otherwise Warn.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
