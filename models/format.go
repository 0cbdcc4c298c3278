package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FormatValue renders a raw JSON value as a spreadsheet cell. Top-level
// strings are written bare and null becomes "". Objects and arrays use the
// {'Key': value} style existing output files were written with, keeping the
// key order of the source document. Nested strings escape backslash, tab,
// CR and LF; other control characters are written as-is.
func FormatValue(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var b strings.Builder
	if err := writeValue(dec, &b, true); err != nil {
		return string(raw)
	}
	return b.String()
}

func writeValue(dec *json.Decoder, b *strings.Builder, top bool) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	switch v := tok.(type) {
	case json.Delim:
		closing := json.Delim('}')
		if v == '[' {
			closing = ']'
		}
		b.WriteRune(rune(v))
		for i := 0; dec.More(); i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			if v == '{' {
				key, err := dec.Token()
				if err != nil {
					return err
				}
				k, _ := key.(string)
				b.WriteString(quote(k))
				b.WriteString(": ")
			}
			if err := writeValue(dec, b, false); err != nil {
				return err
			}
		}
		if _, err := dec.Token(); err != nil {
			return err
		}
		b.WriteRune(rune(closing))
	case string:
		if top {
			b.WriteString(v)
		} else {
			b.WriteString(quote(v))
		}
	case json.Number:
		b.WriteString(v.String())
	case bool:
		if v {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case nil:
		if !top {
			b.WriteString("None")
		}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer(`\\`, `\\\\`, "\n", `\\n`, "\r", `\\r`, "\t", `\\t`)

func quote(s string) string {
	s = quoteEscaper.Replace(s)
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	return "'" + strings.ReplaceAll(s, "'", `\\'`) + "'"
}
