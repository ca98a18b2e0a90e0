// Package sellercentral talks to the order reports endpoints of the seller console
package sellercentral

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reportrelay/internal/adapters/upstream"
	"reportrelay/internal/platform/config"
	perr "reportrelay/internal/platform/errors"
	"reportrelay/internal/services/reports/domain"
)

const (
	baseURLDefault = "https://sellercentral.amazon.com"

	pathRequestNew = "/order-reports-and-feeds/api/reportRequest"
	pathRequestAll = "/order-reports-and-feeds/api/v1/reportRequest"
	pathMetadata   = "/order-reports-and-feeds/api/documentMetadata"
	pathDownload   = "/order-reports-and-feeds/feeds/download"
	pathReferer    = "/order-reports-and-feeds/reports"

	maxDocument = 64 << 20
)

// Options configures the seller console client
type Options struct {
	BaseURL string

	// Session material captured from a signed in browser
	Cookie    string
	CSRFToken string
	AmzCSRF   string

	Timeout    time.Duration
	RatePerSec float64
	Burst      int
	MaxRetries int
}

// FromConfig reads options using the RELAY_SELLER_ prefix
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("RELAY_SELLER_")
	return Options{
		BaseURL:    sc.MayString("BASE_URL", baseURLDefault),
		Cookie:     sc.MayString("COOKIE", ""),
		CSRFToken:  sc.MayString("CSRF_TOKEN", ""),
		AmzCSRF:    sc.MayString("AMZ_CSRF_TOKEN", ""),
		Timeout:    sc.MayDuration("HTTP_TIMEOUT", 60*time.Second),
		RatePerSec: sc.MayFloat64("RPS", 2),
		Burst:      sc.MayInt("BURST", 2),
		MaxRetries: sc.MayInt("MAX_RETRIES", 2),
	}
}

// Client implements domain.ReportSource
type Client struct {
	up *upstream.Client
}

var _ domain.ReportSource = (*Client)(nil)

// New builds a client; redirects are never followed so the readiness probe can see them
func New(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	h := http.Header{
		"Accept":           {"application/json, text/javascript, */*; q=0.01"},
		"X-Requested-With": {"XMLHttpRequest"},
		"Referer":          {o.BaseURL + pathReferer},
	}
	if o.Cookie != "" {
		h.Set("Cookie", o.Cookie)
	}
	if o.CSRFToken != "" {
		h.Set("Anti-Csrftoken-A2z", o.CSRFToken)
	}
	if o.AmzCSRF != "" {
		h.Set("X-Amz-Csrf-Token", o.AmzCSRF)
	}
	return &Client{up: upstream.New(upstream.Options{
		Name:       "sellercentral",
		BaseURL:    o.BaseURL,
		Timeout:    o.Timeout,
		RatePerSec: o.RatePerSec,
		Burst:      o.Burst,
		MaxRetries: o.MaxRetries,
		Header:     h,
	})}
}

type referenceResp struct {
	ReferenceID string `json:"referenceId"`
	Data        struct {
		ReferenceID string `json:"referenceId"`
	} `json:"data"`
}

// RequestReport asks for a new order report and returns its reference id
func (c *Client) RequestReport(ctx context.Context, req domain.ReportRequest) (domain.ReferenceID, error) {
	path, label := pathRequestNew, "NEW"
	switch req.Kind {
	case domain.KindNewOrders:
	case domain.KindAllOrders:
		path, label = pathRequestAll, "ALL"
	default:
		return "", perr.InvalidArgf("kind %s has no report request", req.Kind)
	}

	body, err := json.Marshal(req.Params)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeJSON, "encode report request")
	}
	resp, err := c.up.Do(ctx, upstream.Request{
		Method:      http.MethodPost,
		Path:        path,
		Body:        body,
		ContentType: "application/json;charset=UTF-8",
	})
	if err != nil {
		return "", err
	}
	if !upstream.OK(resp.StatusCode) {
		return "", upstream.StatusError(resp, perr.ErrorCodeRequestFailed, "reportRequest %s %d", label, resp.StatusCode)
	}
	if !upstream.IsJSON(resp.Header) {
		_ = upstream.DrainAndClose(resp.Body)
		return "", perr.Newf(perr.ErrorCodeRequestFailed, "reportRequest %s non-JSON", label)
	}

	var out referenceResp
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeRequestFailed, "reportRequest %s bad JSON", label)
	}
	if out.ReferenceID != "" {
		return domain.ReferenceID(out.ReferenceID), nil
	}
	return domain.ReferenceID(out.Data.ReferenceID), nil
}

type metadataResp struct {
	Data struct {
		DocumentID string `json:"documentId"`
		Status     string `json:"status"`
	} `json:"data"`
}

// terminal processing states of a report request
var failedStatus = map[string]bool{"FAILED": true, "CANCELLED": true, "FATAL": true}

// Readiness checks the document metadata endpoint once
// the answer is classified by content type whatever its status; only transport failures are errors
func (c *Client) Readiness(ctx context.Context, ref domain.ReferenceID) (domain.Readiness, error) {
	resp, err := c.up.Do(ctx, upstream.Request{
		Path:  pathMetadata,
		Query: url.Values{"referenceId": {ref.String()}},
	})
	if err != nil {
		return domain.Readiness{}, err
	}

	switch {
	case upstream.IsRedirect(resp.StatusCode):
		_ = upstream.DrainAndClose(resp.Body)
		return domain.Pending(domain.ReasonRedirect), nil
	case upstream.IsTabular(resp.Header):
		raw, err := upstream.ReadAll(resp.Body, maxDocument)
		if err != nil {
			return domain.Readiness{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "read inline report")
		}
		return domain.ReadyDirect(raw), nil
	case !upstream.IsJSON(resp.Header):
		_ = upstream.DrainAndClose(resp.Body)
		return domain.Pending(domain.ReasonNonJSON), nil
	}

	var meta metadataResp
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return domain.Pending(domain.ReasonNoDocumentID), nil
	}
	if st := strings.ToUpper(strings.TrimSpace(meta.Data.Status)); failedStatus[st] {
		return domain.Failed(st), nil
	}
	if meta.Data.DocumentID == "" {
		return domain.Pending(domain.ReasonNoDocumentID), nil
	}
	return domain.ReadyDocument(meta.Data.DocumentID), nil
}

// Download fetches a generated document as text
func (c *Client) Download(ctx context.Context, documentID string) (string, error) {
	resp, err := c.up.Do(ctx, upstream.Request{
		Path:  pathDownload,
		Query: url.Values{"documentId": {documentID}, "fileType": {"txt"}},
	})
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeDownload, "download %s", documentID)
	}
	if !upstream.OK(resp.StatusCode) {
		_ = upstream.DrainAndClose(resp.Body)
		return "", perr.Newf(perr.ErrorCodeDownload, "Amazon download %d", resp.StatusCode)
	}
	raw, err := upstream.ReadAll(resp.Body, maxDocument)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeDownload, "read document %s", documentID)
	}
	return raw, nil
}
