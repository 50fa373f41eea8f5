package s3

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7/pkg/signer"

	"github.com/greeddj/go-zzfeed/internal/feed/config"
	"github.com/greeddj/go-zzfeed/internal/feed/helpers"
)

// Client implements the handful of S3 calls the store needs, signed with SigV4.
type Client struct {
	cfg      config.S3Config
	http     *http.Client
	endpoint *url.URL
	now      func() time.Time
}

// request describes one S3 call. An empty key addresses the bucket itself.
type request struct {
	method          string
	key             string
	query           url.Values
	body            []byte
	contentType     string
	contentEncoding string
	meta            map[string]string
	ifNoneMatch     bool
}

// newClient constructs an S3 client from configuration.
func newClient(cfg config.S3Config, httpClient *http.Client) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, errS3BucketIsEmpty
	}
	if httpClient == nil {
		return nil, errS3HTTPClientIsNil
	}
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", cfg.Region)
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	parsed, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil {
		return nil, err
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: %s", errS3InvalidEndpoint, endpoint)
	}
	return &Client{
		cfg:      cfg,
		http:     httpClient,
		endpoint: parsed,
		now:      time.Now,
	}, nil
}

// do signs and sends r. The caller owns the response body.
func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	host := c.endpoint.Host
	objectPath := "/" + strings.TrimLeft(r.key, "/")
	if c.cfg.PathStyle {
		objectPath = "/" + c.cfg.Bucket
		if key := strings.TrimLeft(r.key, "/"); key != "" {
			objectPath += "/" + key
		}
	} else {
		host = c.cfg.Bucket + "." + host
	}
	objectPath = c.endpoint.Path + objectPath

	target := &url.URL{
		Scheme:   c.endpoint.Scheme,
		Host:     host,
		Path:     objectPath,
		RawQuery: strings.ReplaceAll(r.query.Encode(), "+", "%20"),
	}
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target.String(), body)
	if err != nil {
		return nil, err
	}
	req.Host = host
	req.ContentLength = int64(len(r.body))

	payloadHash := emptySHA256
	if r.body != nil {
		sum := sha256.Sum256(r.body)
		payloadHash = hex.EncodeToString(sum[:])
	}
	req.Header.Set("X-Amz-Content-Sha256", payloadHash)
	for name, value := range r.meta {
		if value = strings.TrimSpace(value); value != "" {
			req.Header.Set("X-Amz-Meta-"+helpers.UpperFirstRune(strings.TrimSpace(name)), value)
		}
	}
	if r.ifNoneMatch {
		req.Header.Set("If-None-Match", "*")
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.contentEncoding != "" {
		req.Header.Set("Content-Encoding", r.contentEncoding)
	}
	req = signer.SignV4(*req, c.cfg.AccessKey, c.cfg.SecretKey, c.cfg.SessionToken, c.cfg.Region)
	return c.http.Do(req)
}

// getObject returns the object body and headers.
func (c *Client) getObject(ctx context.Context, key string) ([]byte, http.Header, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, key: key})
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if err := statusError(resp, http.StatusOK); err != nil {
		return nil, nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return data, resp.Header.Clone(), nil
}

// headObject returns the object headers.
func (c *Client) headObject(ctx context.Context, key string) (http.Header, error) {
	resp, err := c.do(ctx, request{method: http.MethodHead, key: key})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if err := statusError(resp, http.StatusOK); err != nil {
		return nil, err
	}
	return resp.Header.Clone(), nil
}

// putObject uploads r.body under r.key.
func (c *Client) putObject(ctx context.Context, r request) error {
	r.method = http.MethodPut
	if r.body == nil {
		r.body = []byte{}
	}
	resp, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return statusError(resp, http.StatusOK, http.StatusNoContent)
}

// deleteObject deletes key; a missing object is not an error.
func (c *Client) deleteObject(ctx context.Context, key string) error {
	resp, err := c.do(ctx, request{method: http.MethodDelete, key: key})
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	err = statusError(resp, http.StatusOK, http.StatusNoContent)
	if errors.Is(err, errS3NotFound) {
		return nil
	}
	return err
}

// listObjects returns every key under prefix, following continuation tokens.
func (c *Client) listObjects(ctx context.Context, prefix string) ([]string, error) {
	var (
		keys  []string
		token string
	)
	for {
		query := url.Values{"list-type": {"2"}}
		if prefix != "" {
			query.Set("prefix", prefix)
		}
		if token != "" {
			query.Set("continuation-token", token)
		}
		page, err := c.listPage(ctx, query)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Contents {
			if item.Key != "" {
				keys = append(keys, item.Key)
			}
		}
		if !page.IsTruncated || page.NextContinuationToken == "" {
			return keys, nil
		}
		token = page.NextContinuationToken
	}
}

func (c *Client) listPage(ctx context.Context, query url.Values) (listBucketResult, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, query: query})
	if err != nil {
		return listBucketResult{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if err := statusError(resp, http.StatusOK); err != nil {
		if errors.Is(err, errS3NotFound) {
			return listBucketResult{}, errS3BucketNotFound
		}
		return listBucketResult{}, err
	}
	var page listBucketResult
	if err := xml.NewDecoder(resp.Body).Decode(&page); err != nil {
		return listBucketResult{}, err
	}
	return page, nil
}

// ensureBucket creates the bucket when HEAD reports it missing.
func (c *Client) ensureBucket(ctx context.Context) error {
	resp, err := c.do(ctx, request{method: http.MethodHead})
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	err = statusError(resp, http.StatusOK, http.StatusNoContent)
	if !errors.Is(err, errS3NotFound) {
		return err
	}

	create := request{method: http.MethodPut}
	if c.cfg.Region != defaultRegion {
		create.body = fmt.Appendf(nil,
			"<CreateBucketConfiguration xmlns=\"http://s3.amazonaws.com/doc/2006-03-01/\">"+
				"<LocationConstraint>%s</LocationConstraint>"+
				"</CreateBucketConfiguration>",
			c.cfg.Region,
		)
		create.contentType = "application/xml"
	}
	resp, err = c.do(ctx, create)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusConflict {
		return nil
	}
	return statusError(resp, http.StatusOK, http.StatusNoContent)
}

// statusError maps an unexpected status to a sentinel error.
func statusError(resp *http.Response, ok ...int) error {
	for _, code := range ok {
		if resp.StatusCode == code {
			return nil
		}
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return errS3NotFound
	case http.StatusPreconditionFailed:
		return errS3PreconditionFailed
	default:
		return fmt.Errorf("%w: %s %s", errS3RequestFailed, resp.Request.Method, resp.Status)
	}
}

// listBucketResult is the subset of the ListObjectsV2 response we read.
type listBucketResult struct {
	Contents              []listBucketContent `xml:"Contents"`
	IsTruncated           bool                `xml:"IsTruncated"`
	NextContinuationToken string              `xml:"NextContinuationToken"`
}

type listBucketContent struct {
	Key string `xml:"Key"`
}
