// Package sink delivers report files, registrations and run logs to the ingestion backend
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"slices"
	"time"

	"reportrelay/internal/adapters/upstream"
	"reportrelay/internal/platform/config"
	perr "reportrelay/internal/platform/errors"
	"reportrelay/internal/services/reports/domain"
)

// Options configures the sink client
type Options struct {
	// URL is the configured ingest url; endpoints are derived from it
	URL     string
	Token   string
	Timeout time.Duration
}

// FromConfig reads options using the RELAY_ prefix
func FromConfig(cfg config.Conf) Options {
	r := cfg.Prefix("RELAY_")
	return Options{
		URL:     r.MayString("INGEST_URL", ""),
		Token:   r.MayString("INGEST_TOKEN", ""),
		Timeout: r.MayDuration("SINK_TIMEOUT", 60*time.Second),
	}
}

// Client implements domain.Sink and domain.Registrar
type Client struct {
	up    *upstream.Client
	urls  URLs
	token string
}

var (
	_ domain.Sink      = (*Client)(nil)
	_ domain.Registrar = (*Client)(nil)
)

// New builds a sink client; uploads are never retried so a file is delivered at most once per run
func New(o Options) (*Client, error) {
	urls, err := DeriveURLs(o.URL)
	if err != nil {
		return nil, err
	}
	return &Client{
		up: upstream.New(upstream.Options{
			Name:            "sink",
			Timeout:         o.Timeout,
			FollowRedirects: true,
		}),
		urls:  urls,
		token: o.Token,
	}, nil
}

// URLs returns the derived endpoints
func (c *Client) URLs() URLs { return c.urls }

// Upload posts one file as multipart form data with its fields
func (c *Client) Upload(ctx context.Context, u domain.Upload) (domain.SinkResult, error) {
	target, err := c.urls.For(u.Kind)
	if err != nil {
		return domain.SinkResult{}, err
	}
	body, ctype, err := multipartBody(u)
	if err != nil {
		return domain.SinkResult{}, perr.Wrap(err, perr.ErrorCodeSink, "build upload body")
	}

	resp, err := c.up.Do(ctx, upstream.Request{
		Method:      http.MethodPost,
		Path:        target,
		Body:        body,
		ContentType: ctype,
		Header:      http.Header{"X-Access-Token": {c.token}},
	})
	if err != nil {
		return domain.SinkResult{}, perr.Wrapf(err, perr.ErrorCodeSink, "upload %s", u.FileName)
	}
	if !upstream.OK(resp.StatusCode) {
		_ = upstream.DrainAndClose(resp.Body)
		return domain.SinkResult{}, perr.Newf(perr.ErrorCodeSink, "Backend %d", resp.StatusCode)
	}
	return readResult(resp)
}

type registrationWire struct {
	ClientID    string `json:"clientId"`
	Label       string `json:"label"`
	ShopID      string `json:"shopId"`
	Version     string `json:"version"`
	UA          string `json:"ua"`
	AutoEnabled bool   `json:"autoEnabled"`
	ConnectedAt int64  `json:"connectedAt"`
}

// Connect registers the client with the backend
func (c *Client) Connect(ctx context.Context, reg domain.Registration) (domain.SinkResult, error) {
	body, err := json.Marshal(registrationWire{
		ClientID:    reg.ClientID,
		Label:       reg.Label,
		ShopID:      reg.ShopID,
		Version:     reg.Version,
		UA:          reg.UserAgent,
		AutoEnabled: reg.AutoEnabled,
		ConnectedAt: reg.ConnectedAt.UnixMilli(),
	})
	if err != nil {
		return domain.SinkResult{}, perr.Wrap(err, perr.ErrorCodeJSON, "encode registration")
	}
	resp, err := c.up.Do(ctx, upstream.Request{
		Method:      http.MethodPost,
		Path:        c.urls.Register,
		Body:        body,
		ContentType: "application/json",
	})
	if err != nil {
		return domain.SinkResult{}, perr.Wrap(err, perr.ErrorCodeSink, "register client")
	}
	if !upstream.OK(resp.StatusCode) {
		_ = upstream.DrainAndClose(resp.Body)
		return domain.SinkResult{}, perr.Newf(perr.ErrorCodeSink, "Register %d", resp.StatusCode)
	}
	return readResult(resp)
}

// readResult decodes JSON answers and keeps anything else raw
func readResult(resp *http.Response) (domain.SinkResult, error) {
	isJSON := upstream.IsJSON(resp.Header)
	text, err := upstream.ReadAll(resp.Body, 1<<20)
	if err != nil {
		return domain.SinkResult{}, perr.Wrap(err, perr.ErrorCodeSink, "read backend answer")
	}
	res := domain.SinkResult{OK: true}
	if isJSON {
		if err := json.Unmarshal([]byte(text), &res.Body); err == nil {
			return res, nil
		}
	}
	res.Raw = text
	return res, nil
}

// multipartBody writes the fields in key order followed by the file part
func multipartBody(u domain.Upload) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(u.Fields))
	for k := range u.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if k == "file" || k == "filename" {
			continue
		}
		if err := w.WriteField(k, u.Fields[k]); err != nil {
			return nil, "", err
		}
	}

	name := u.FileName
	if name == "" {
		name = "file.txt"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", "text/plain")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write([]byte(u.Content)); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
