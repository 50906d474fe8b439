package whloader

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
)

// StatusError is returned when the source responds with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

// extractor extracts data from source such as an HTTP server or Cloud Storage.
type extractor interface {
	extract(ctx context.Context, source string) (*RawDataset, error)
}

func newDefaultExtractor(ctx context.Context, source string, client *http.Client, userAgent string) (extractor, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse source url %s: %w", source, err)
	}

	switch u.Scheme {
	case "http", "https":
		if client == nil {
			client = http.DefaultClient
		}
		return &httpExtractor{client: client, userAgent: userAgent}, nil
	case "gs":
		s, err := storage.NewClient(ctx)
		if err != nil {
			return nil, xerrors.Errorf("failed to build storage client: %w", err)
		}
		return &gcsExtractor{storage: s}, nil
	}

	return nil, xerrors.Errorf("unsupported source scheme %q", u.Scheme)
}

type httpExtractor struct {
	client    *http.Client
	userAgent string
}

func (e *httpExtractor) extract(ctx context.Context, source string) (*RawDataset, error) {
	l := log.Ctx(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, xerrors.Errorf("failed to build http request: %w", err)
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	l.Info().Msgf("downloading %s", source)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, xerrors.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: source, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, xerrors.Errorf("failed to read response body: %w", err)
	}

	l.Debug().Int("bytes", len(body)).Str("content_type", resp.Header.Get("Content-Type")).Msg("downloaded")

	return &RawDataset{Body: body, Charset: charsetOf(resp.Header.Get("Content-Type"))}, nil
}

type gcsExtractor struct {
	storage *storage.Client
}

func (e *gcsExtractor) extract(ctx context.Context, source string) (*RawDataset, error) {
	l := log.Ctx(ctx)

	u, err := url.Parse(source)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse source url %s: %w", source, err)
	}

	obj := e.storage.Bucket(u.Host).Object(strings.TrimPrefix(u.Path, "/"))
	r, err := obj.NewReader(ctx)
	if err != nil {
		return nil, xerrors.Errorf("failed to get reader of %s: %w", source, err)
	}
	defer r.Close()

	l.Info().Msgf("downloading %s", source)

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, xerrors.Errorf("failed to read %s: %w", source, err)
	}

	return &RawDataset{Body: body, Charset: charsetOf(r.Attrs.ContentType)}, nil
}

func charsetOf(contentType string) string {
	if contentType == "" {
		return ""
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}

	return params["charset"]
}
