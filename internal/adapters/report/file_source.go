package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
)

// Supported report encodings
const (
	EncodingUTF8        = "utf-8"
	EncodingUTF16       = "utf-16"
	EncodingWindows1252 = "windows-1252"
	EncodingLatin1      = "iso-8859-1"
)

// StdinPath reads the report from standard input
const StdinPath = "-"

// Load reads the whole report at path and returns it as UTF-8.
// StdinPath reads stdin instead, or os.Stdin when stdin is nil.
// A leading byte order mark is honored and removed for the unicode encodings.
func Load(path, enc string, stdin io.Reader) ([]byte, error) {
	if path == StdinPath {
		if stdin == nil {
			stdin = os.Stdin
		}
		return Decode(stdin, enc)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeMalformedInput, "failed to open settlement report", err).
			WithDetail("path", path)
	}
	defer f.Close()

	return Decode(f, enc)
}

// Decode reads r fully, converting from enc to UTF-8
func Decode(r io.Reader, enc string) ([]byte, error) {
	decoder, err := decoderFor(enc)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(transform.NewReader(r, decoder))
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeMalformedInput, "failed to decode settlement report", err).
			WithDetail("encoding", enc)
	}
	return data, nil
}

// Reader is a convenience for Load followed by bytes.NewReader
func Reader(path, enc string, stdin io.Reader) (io.Reader, error) {
	data, err := Load(path, enc, stdin)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

func decoderFor(enc string) (transform.Transformer, error) {
	var e encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", EncodingUTF8, "utf8":
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	case EncodingUTF16, "utf16":
		e = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
		return unicode.BOMOverride(e.NewDecoder()), nil
	case EncodingWindows1252, "cp1252":
		e = charmap.Windows1252
	case EncodingLatin1, "latin1":
		e = charmap.ISO8859_1
	default:
		return nil, domain.NewDomainError(domain.ErrorCodeConfigInvalid,
			fmt.Sprintf("unsupported report encoding %q", enc))
	}
	return e.NewDecoder(), nil
}
