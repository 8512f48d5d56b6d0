// Package charset maps QR Extended Channel Interpretation (ECI) designators
// to text encodings and converts between them and UTF-8.
package charset

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

var (
	// ErrInvalidECI is returned for designators outside 0..999999 or ones
	// with no known encoding.
	ErrInvalidECI = errors.New("charset: invalid ECI designator")

	// ErrUnsupported is returned for an unknown character set name.
	ErrUnsupported = errors.New("charset: unsupported character set")
)

// ECI is a character set designator.
type ECI struct {
	// Value is the designator written after the ECI mode indicator.
	Value int

	// Name is the canonical name, as accepted by Lookup.
	Name string

	enc     encoding.Encoding
	values  []int
	aliases []string
}

func (e *ECI) String() string { return e.Name }

// Encoding returns the x/text codec for e.
func (e *ECI) Encoding() encoding.Encoding { return e.enc }

var (
	Cp437      = &ECI{Value: 0, Name: "Cp437", enc: charmap.CodePage437, values: []int{0, 2}, aliases: []string{"IBM437"}}
	ISO8859_1  = &ECI{Value: 1, Name: "ISO-8859-1", enc: charmap.ISO8859_1, values: []int{1, 3}, aliases: []string{"ISO8859_1", "Latin1"}}
	ISO8859_2  = &ECI{Value: 4, Name: "ISO-8859-2", enc: charmap.ISO8859_2, aliases: []string{"ISO8859_2"}}
	ISO8859_3  = &ECI{Value: 5, Name: "ISO-8859-3", enc: charmap.ISO8859_3, aliases: []string{"ISO8859_3"}}
	ISO8859_4  = &ECI{Value: 6, Name: "ISO-8859-4", enc: charmap.ISO8859_4, aliases: []string{"ISO8859_4"}}
	ISO8859_5  = &ECI{Value: 7, Name: "ISO-8859-5", enc: charmap.ISO8859_5, aliases: []string{"ISO8859_5"}}
	ISO8859_6  = &ECI{Value: 8, Name: "ISO-8859-6", enc: charmap.ISO8859_6, aliases: []string{"ISO8859_6"}}
	ISO8859_7  = &ECI{Value: 9, Name: "ISO-8859-7", enc: charmap.ISO8859_7, aliases: []string{"ISO8859_7"}}
	ISO8859_8  = &ECI{Value: 10, Name: "ISO-8859-8", enc: charmap.ISO8859_8, aliases: []string{"ISO8859_8"}}
	ISO8859_9  = &ECI{Value: 11, Name: "ISO-8859-9", enc: charmap.ISO8859_9, aliases: []string{"ISO8859_9"}}
	ISO8859_10 = &ECI{Value: 12, Name: "ISO-8859-10", enc: charmap.ISO8859_10, aliases: []string{"ISO8859_10"}}
	// x/text has no ISO-8859-11; Windows-874 agrees with it on every
	// assigned code point.
	ISO8859_11 = &ECI{Value: 13, Name: "ISO-8859-11", enc: charmap.Windows874, aliases: []string{"ISO8859_11", "TIS-620"}}
	ISO8859_13 = &ECI{Value: 15, Name: "ISO-8859-13", enc: charmap.ISO8859_13, aliases: []string{"ISO8859_13"}}
	ISO8859_14 = &ECI{Value: 16, Name: "ISO-8859-14", enc: charmap.ISO8859_14, aliases: []string{"ISO8859_14"}}
	ISO8859_15 = &ECI{Value: 17, Name: "ISO-8859-15", enc: charmap.ISO8859_15, aliases: []string{"ISO8859_15"}}
	ISO8859_16 = &ECI{Value: 18, Name: "ISO-8859-16", enc: charmap.ISO8859_16, aliases: []string{"ISO8859_16"}}
	ShiftJIS   = &ECI{Value: 20, Name: "Shift_JIS", enc: japanese.ShiftJIS, aliases: []string{"SJIS", "MS932"}}
	Cp1250     = &ECI{Value: 21, Name: "windows-1250", enc: charmap.Windows1250, aliases: []string{"Cp1250"}}
	Cp1251     = &ECI{Value: 22, Name: "windows-1251", enc: charmap.Windows1251, aliases: []string{"Cp1251"}}
	Cp1252     = &ECI{Value: 23, Name: "windows-1252", enc: charmap.Windows1252, aliases: []string{"Cp1252"}}
	Cp1256     = &ECI{Value: 24, Name: "windows-1256", enc: charmap.Windows1256, aliases: []string{"Cp1256"}}
	UTF16BE    = &ECI{Value: 25, Name: "UTF-16BE", enc: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), aliases: []string{"UnicodeBig", "UnicodeBigUnmarked"}}
	UTF8       = &ECI{Value: 26, Name: "UTF-8", enc: unicode.UTF8, aliases: []string{"UTF8"}}
	ASCII      = &ECI{Value: 27, Name: "US-ASCII", enc: charmap.ISO8859_1, values: []int{27, 170}, aliases: []string{"ASCII"}}
	Big5       = &ECI{Value: 28, Name: "Big5", enc: traditionalchinese.Big5}
	GB18030    = &ECI{Value: 29, Name: "GB18030", enc: simplifiedchinese.GB18030, aliases: []string{"GB2312", "EUC_CN", "GBK"}}
	EUCKR      = &ECI{Value: 30, Name: "EUC-KR", enc: korean.EUCKR, aliases: []string{"EUC_KR"}}
)

var (
	byValue = map[int]*ECI{}
	byName  = map[string]*ECI{}
)

func init() {
	for _, e := range []*ECI{
		Cp437, ISO8859_1, ISO8859_2, ISO8859_3, ISO8859_4, ISO8859_5,
		ISO8859_6, ISO8859_7, ISO8859_8, ISO8859_9, ISO8859_10, ISO8859_11,
		ISO8859_13, ISO8859_14, ISO8859_15, ISO8859_16, ShiftJIS, Cp1250,
		Cp1251, Cp1252, Cp1256, UTF16BE, UTF8, ASCII, Big5, GB18030, EUCKR,
	} {
		values := e.values
		if values == nil {
			values = []int{e.Value}
		}
		for _, v := range values {
			byValue[v] = e
		}
		byName[strings.ToUpper(e.Name)] = e
		for _, a := range e.aliases {
			byName[strings.ToUpper(a)] = e
		}
	}
}

// ForValue returns the character set for an ECI designator.
func ForValue(v int) (*ECI, error) {
	if v < 0 || v > 999999 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidECI, v)
	}
	e, ok := byValue[v]
	if !ok {
		return nil, fmt.Errorf("%w: %d has no known encoding", ErrInvalidECI, v)
	}
	return e, nil
}

// Lookup finds a character set by name, ignoring case. It returns nil for
// unknown names.
func Lookup(name string) *ECI {
	return byName[strings.ToUpper(name)]
}

// Encode converts s to the named character set. It fails when the name is
// unknown or s holds a rune the set cannot represent.
func Encode(s, name string) ([]byte, error) {
	e := Lookup(name)
	if e == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, name)
	}
	if e == ASCII {
		for i := 0; i < len(s); i++ {
			if s[i] >= 0x80 {
				return nil, fmt.Errorf("charset: %q is not ASCII", s)
			}
		}
		return []byte(s), nil
	}
	b, err := e.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("charset: encode as %s: %w", e.Name, err)
	}
	return b, nil
}

// Decode converts b from the named character set to UTF-8.
func Decode(b []byte, name string) (string, error) {
	e := Lookup(name)
	if e == nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, name)
	}
	out, err := e.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("charset: decode as %s: %w", e.Name, err)
	}
	return string(out), nil
}

// CanEncode reports whether every rune of s is representable in the named
// character set.
func CanEncode(s, name string) bool {
	_, err := Encode(s, name)
	return err == nil
}
