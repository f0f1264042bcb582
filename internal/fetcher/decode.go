package fetcher

import (
	"mime"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeText converts raw export bytes to a UTF-8 string. The charset
// parameter of contentType selects the source encoding; without one the bytes
// are taken as UTF-8. A leading byte-order mark overrides the charset and is
// removed.
func decodeText(data []byte, contentType string) (string, error) {
	var enc encoding.Encoding = unicode.UTF8
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil {
			if cs := params["charset"]; cs != "" {
				e, err := htmlindex.Get(cs)
				if err != nil {
					zap.L().Warn("fetcher: unknown charset, reading as utf-8", zap.String("charset", cs))
				} else {
					enc = e
				}
			}
		}
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), data)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: decode body")
	}
	return string(out), nil
}
