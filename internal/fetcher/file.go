package fetcher

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// FileFetcher implements Fetcher over local files. It lets a saved export be
// replayed through the pipeline without contacting Kobo.
type FileFetcher struct{}

func (FileFetcher) open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "fetcher: open file")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open %s", path)
	}
	return f, nil
}

// FetchText reads the file at path as UTF-8, dropping any byte-order mark.
func (ff FileFetcher) FetchText(ctx context.Context, path string) (string, error) {
	body, err := ff.open(ctx, path)
	if err != nil {
		return "", err
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: read %s", path)
	}
	return decodeText(data, "")
}
