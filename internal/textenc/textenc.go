package textenc

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// Decode converts raw bytes of unknown encoding into a best-effort UTF-8
// string. Valid UTF-8 passes through untouched; otherwise the most
// probable encoding is detected and decoded leniently, substituting
// undecodable sequences rather than failing. Zero-length input yields the
// empty string; everything else yields a non-empty, printable result.
func Decode(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	if utf8.Valid(raw) {
		return string(raw)
	}

	enc, _, _ := charset.DetermineEncoding(raw, "")
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), enc.NewDecoder()))
	if err != nil || len(decoded) == 0 {
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
	}

	return strings.ToValidUTF8(string(decoded), string(utf8.RuneError))
}

// DecodeWithContentType behaves like Decode but lets an HTTP Content-Type
// header steer detection when a charset parameter is present.
func DecodeWithContentType(raw []byte, contentType string) string {
	if len(raw) == 0 {
		return ""
	}

	if contentType != "" {
		enc, _, certain := charset.DetermineEncoding(raw, contentType)
		if certain {
			decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), enc.NewDecoder()))
			if err == nil && len(decoded) > 0 {
				return strings.ToValidUTF8(string(decoded), string(utf8.RuneError))
			}
		}
	}

	return Decode(raw)
}
