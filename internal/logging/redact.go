package logging

import (
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	redacted = "[REDACTED]"

	// maskedPassword is what url.URL.Redacted puts in place of a password.
	maskedPassword = "xxxxx"
)

// RedactedString creates a field whose value is replaced by its length.
func RedactedString(key, val string) zap.Field {
	return zap.String(key, "[REDACTED:"+strconv.Itoa(len(val))+"]")
}

// URL creates a field for a URL with any password masked.
func URL(key, raw string) zap.Field {
	if masked, ok := redactURL(raw); ok {
		return zap.String(key, masked)
	}
	return zap.String(key, raw)
}

// redactURL masks the password of raw if it is a URL carrying one. A URL
// whose password is already masked is left alone.
func redactURL(raw string) (string, bool) {
	if !strings.Contains(raw, "://") || !strings.Contains(raw, "@") {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return "", false
	}
	if pw, ok := u.User.Password(); !ok || pw == maskedPassword {
		return "", false
	}
	return u.Redacted(), true
}

// RedactingEncoder wraps an encoder and masks sensitive fields.
type RedactingEncoder struct {
	zapcore.Encoder
	fields         map[string]bool
	urlCredentials bool
}

// NewRedactingEncoder wraps base with the redaction rules in cfg. A disabled
// config yields a pass-through wrapper.
func NewRedactingEncoder(base zapcore.Encoder, cfg RedactionConfig) *RedactingEncoder {
	e := &RedactingEncoder{Encoder: base, fields: map[string]bool{}}
	if !cfg.Enabled {
		return e
	}
	for _, f := range cfg.Fields {
		e.fields[strings.ToLower(f)] = true
	}
	e.urlCredentials = cfg.URLCredentials
	return e
}

func (e *RedactingEncoder) sensitiveKey(key string) bool {
	return e.fields[strings.ToLower(key)]
}

func (e *RedactingEncoder) redactField(f zapcore.Field) zapcore.Field {
	if e.sensitiveKey(f.Key) {
		return zap.String(f.Key, redacted)
	}
	if e.urlCredentials && f.Type == zapcore.StringType {
		if masked, ok := redactURL(f.String); ok {
			return zap.String(f.Key, masked)
		}
	}
	return f
}

// EncodeEntry redacts per-call fields before encoding.
func (e *RedactingEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	out := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		out[i] = e.redactField(f)
	}
	return e.Encoder.EncodeEntry(ent, out)
}

// AddString redacts fields attached with Logger.With.
func (e *RedactingEncoder) AddString(key, val string) {
	if e.sensitiveKey(key) {
		e.Encoder.AddString(key, redacted)
		return
	}
	if e.urlCredentials {
		if masked, ok := redactURL(val); ok {
			e.Encoder.AddString(key, masked)
			return
		}
	}
	e.Encoder.AddString(key, val)
}

// AddReflected redacts sensitive keys wholesale.
func (e *RedactingEncoder) AddReflected(key string, val interface{}) error {
	if e.sensitiveKey(key) {
		e.Encoder.AddString(key, redacted)
		return nil
	}
	return e.Encoder.AddReflected(key, val)
}

// Clone keeps redaction on child encoders.
func (e *RedactingEncoder) Clone() zapcore.Encoder {
	return &RedactingEncoder{
		Encoder:        e.Encoder.Clone(),
		fields:         e.fields,
		urlCredentials: e.urlCredentials,
	}
}
