package searchdata

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const hexDigits = "0123456789abcdef"

// EncodeKey turns a symbol name into its search key.
//
// The name is NFC-normalized and lower-cased; ASCII letters and digits are
// kept as is and every other byte becomes '_' followed by two lower-case hex
// digits, so "value_compare" becomes "value_5fcompare" and "vector< T >"
// becomes "vector_3c_20t_20_3e".
func EncodeKey(name string) string {
	name = foldName(name)
	if name == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(name) * 2)
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if isKeyByte(ch) {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('_')
		b.WriteByte(hexDigits[ch>>4])
		b.WriteByte(hexDigits[ch&0x0f])
	}
	return b.String()
}

// DecodeKey reverses EncodeKey. The result is the folded name, not the
// original spelling.
func DecodeKey(key string) (string, error) {
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		ch := key[i]
		if ch != '_' {
			if !isKeyByte(ch) {
				return "", fmt.Errorf("%w %q: unexpected byte %q at %d", ErrInvalidKey, key, ch, i)
			}
			b.WriteByte(ch)
			continue
		}
		if i+2 >= len(key) {
			return "", fmt.Errorf("%w %q: truncated escape at %d", ErrInvalidKey, key, i)
		}
		value, err := strconv.ParseUint(key[i+1:i+3], 16, 8)
		if err != nil || !isHexLower(key[i+1]) || !isHexLower(key[i+2]) {
			return "", fmt.Errorf("%w %q: bad escape %q at %d", ErrInvalidKey, key, key[i:i+3], i)
		}
		b.WriteByte(byte(value))
		i += 2
	}
	return b.String(), nil
}

// ValidKey reports whether key is non-empty and uses only the key alphabet
// with well-formed escapes.
func ValidKey(key string) bool {
	if key == "" {
		return false
	}
	_, err := DecodeKey(key)
	return err == nil
}

// KeyLetter returns the first character of the decoded key, which selects the
// per-letter file a key is written to. Undecodable keys fall back to their
// first byte.
func KeyLetter(key string) string {
	decoded, err := DecodeKey(key)
	if err != nil || decoded == "" {
		if key == "" {
			return ""
		}
		return key[:1]
	}
	r, size := utf8.DecodeRuneInString(decoded)
	if r == utf8.RuneError && size <= 1 {
		return decoded[:1]
	}
	return decoded[:size]
}

func foldName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	// cases.Caser is stateful, so one per call.
	return cases.Lower(language.Und).String(norm.NFC.String(name))
}

func isKeyByte(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
}

func isHexLower(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f')
}
