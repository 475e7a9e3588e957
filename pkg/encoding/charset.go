// Package encoding converts legacy zip entry names to UTF-8.
package encoding

import (
	"fmt"
	"sort"
	"strings"

	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

// DefaultCharset is what zip tools write when the UTF-8 flag is not set.
const DefaultCharset = "cp437"

var charsets = map[string]xenc.Encoding{
	"cp437":     charmap.CodePage437,
	"cp866":     charmap.CodePage866,
	"cp1252":    charmap.Windows1252,
	"euc-kr":    korean.EUCKR,
	"shift_jis": japanese.ShiftJIS,
	"euc-jp":    japanese.EUCJP,
	"gbk":       simplifiedchinese.GBK,
	"gb18030":   simplifiedchinese.GB18030,
	"big5":      traditionalchinese.Big5,
}

// Charsets returns the supported charset names, sorted.
func Charsets() []string {
	out := make([]string, 0, len(charsets))
	for name := range charsets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the encoding registered under name. Names are matched
// case-insensitively and "_"/"-" are interchangeable.
func Lookup(name string) (xenc.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultCharset
	}
	if enc, ok := charsets[key]; ok {
		return enc, nil
	}
	if enc, ok := charsets[strings.ReplaceAll(key, "-", "_")]; ok {
		return enc, nil
	}
	if enc, ok := charsets[strings.ReplaceAll(key, "_", "-")]; ok {
		return enc, nil
	}
	return nil, fmt.Errorf("unknown charset %q", name)
}

// ToUTF8 decodes data from enc.
// Returns the original string if conversion fails.
func ToUTF8(data []byte, enc xenc.Encoding) string {
	result, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// NormalizePath converts an entry name to the slash-separated form used for
// lookups.
func NormalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.TrimPrefix(path, "./")
	return strings.TrimPrefix(path, "/")
}
