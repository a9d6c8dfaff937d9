package extract

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExtractText passes UTF-8 text through unchanged apart from a leading BOM.
func ExtractText(_ context.Context, src Source) (string, error) {
	data := bytes.TrimPrefix(src.Data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text is not valid UTF-8", ErrExtractionFailed)
	}
	return string(data), nil
}
