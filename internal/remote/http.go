package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// httpClient ходит в JSON-API документного хранилища:
//
//	GET {base}/v1/{collection}                     → [ {...}, ... ]
//	GET {base}/v1/{collection}/{id}                → {...} | 404
//	GET {base}/v1/{collection}?field=&op=&value=   → [ {...}, ... ]
//
// Транспортные ошибки и 5xx ретраятся с экспоненциальной паузой; это
// единственные ретраи уровня клиента.
type httpClient struct {
	base    string
	hc      *http.Client
	retries uint64
}

// NewHTTPClient — клиент поверх base URL. timeout — на один запрос.
func NewHTTPClient(base string, timeout time.Duration) Client {
	return &httpClient{
		base:    strings.TrimRight(base, "/"),
		hc:      &http.Client{Timeout: timeout},
		retries: 3,
	}
}

func (c *httpClient) FetchAll(ctx context.Context, collection string) ([]Document, error) {
	u := fmt.Sprintf("%s/v1/%s", c.base, url.PathEscape(collection))
	return c.getList(ctx, u)
}

func (c *httpClient) FetchWhere(ctx context.Context, collection, field, op string, value any) ([]Document, error) {
	q := url.Values{}
	q.Set("field", field)
	q.Set("op", op)
	q.Set("value", fmt.Sprint(value))
	u := fmt.Sprintf("%s/v1/%s?%s", c.base, url.PathEscape(collection), q.Encode())
	return c.getList(ctx, u)
}

func (c *httpClient) FetchByID(ctx context.Context, collection, id string) (Document, error) {
	u := fmt.Sprintf("%s/v1/%s/%s", c.base, url.PathEscape(collection), url.PathEscape(id))
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

func (c *httpClient) getList(ctx context.Context, u string) ([]Document, error) {
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	var docs []Document
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return docs, nil
}

func (c *httpClient) get(ctx context.Context, u string) ([]byte, error) {
	var body []byte

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.hc.Do(req)
		if err != nil {
			return err // transport error — retryable
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(ErrNotFound)
		case resp.StatusCode >= 500:
			return fmt.Errorf("remote: %s: %s", u, resp.Status)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("remote: %s: %s", u, resp.Status))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.retries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return body, nil
}
