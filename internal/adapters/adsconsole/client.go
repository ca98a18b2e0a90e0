// Package adsconsole fetches campaign spend pages from the advertising console
package adsconsole

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"reportrelay/internal/adapters/upstream"
	"reportrelay/internal/platform/config"
	perr "reportrelay/internal/platform/errors"
	"reportrelay/internal/platform/logger"
	pstrings "reportrelay/internal/platform/strings"
	"reportrelay/internal/services/reports/domain"
)

const (
	baseURLDefault = "https://advertising.amazon.com"
	pathRetrieve   = "/a9g-api-gateway/cm/dds/retrieveReport"
	pathReferer    = "/cm/campaigns"
	reportID       = "CrossProgramCampaignReport"
)

// Options configures the ads console client
type Options struct {
	BaseURL string

	AccountID     string
	AdvertiserID  string
	ClientID      string
	MarketplaceID string
	CSRFData      string
	CSRFToken     string
	Cookie        string

	Currency string
	TimeUnit string

	Timeout    time.Duration
	RatePerSec float64
	Burst      int
	MaxRetries int
}

// FromConfig reads options using the RELAY_ADS_ prefix
func FromConfig(cfg config.Conf) Options {
	ads := cfg.Prefix("RELAY_ADS_")
	return Options{
		BaseURL:       ads.MayString("BASE_URL", baseURLDefault),
		AccountID:     ads.MayString("ACCOUNT_ID", ""),
		AdvertiserID:  ads.MayString("ADVERTISER_ID", ""),
		ClientID:      ads.MayString("CLIENT_ID", ""),
		MarketplaceID: ads.MayString("MARKETPLACE_ID", ""),
		CSRFData:      ads.MayString("CSRF_DATA", ""),
		CSRFToken:     ads.MayString("CSRF_TOKEN", ""),
		Cookie:        ads.MayString("COOKIE", ""),
		Currency:      ads.MayString("CURRENCY", "USD"),
		TimeUnit:      ads.MayEnum("TIME_UNIT", "DAILY", "DAILY", "SUMMARY"),
		Timeout:       ads.MayDuration("HTTP_TIMEOUT", 60*time.Second),
		RatePerSec:    ads.MayFloat64("RPS", 2),
		Burst:         ads.MayInt("BURST", 2),
		MaxRetries:    ads.MayInt("MAX_RETRIES", 2),
	}
}

// Client implements domain.SpendSource
type Client struct {
	up       *upstream.Client
	currency string
	timeUnit string
}

var _ domain.SpendSource = (*Client)(nil)

// New builds a client; a missing CSRF pair is logged since the console will likely answer 401
func New(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	h := http.Header{
		"Accept":         {"application/json, text/javascript, */*; q=0.01"},
		"Referer":        {o.BaseURL + pathReferer},
		"Advertisertype": {"SELLER"},
	}
	for k, v := range map[string]string{
		"Amazon-Ads-Account-Id":                o.AccountID,
		"Amazon-Advertising-Api-Advertiserid":  o.AdvertiserID,
		"Amazon-Advertising-Api-Clientid":      o.ClientID,
		"Amazon-Advertising-Api-Marketplaceid": o.MarketplaceID,
		"Amazon-Advertising-Api-Csrf-Data":     o.CSRFData,
		"Amazon-Advertising-Api-Csrf-Token":    o.CSRFToken,
		"Cookie":                               o.Cookie,
	} {
		if v != "" {
			h.Set(k, v)
		}
	}
	if o.CSRFData == "" || o.CSRFToken == "" {
		logger.Named("adsconsole").Warn().Msg("ads csrf headers missing, retrieveReport may answer 401")
	}
	return &Client{
		up: upstream.New(upstream.Options{
			Name:            "adsconsole",
			BaseURL:         o.BaseURL,
			Timeout:         o.Timeout,
			RatePerSec:      o.RatePerSec,
			Burst:           o.Burst,
			MaxRetries:      o.MaxRetries,
			Header:          h,
			FollowRedirects: true,
		}),
		currency: pstrings.FirstNonEmpty(o.Currency, "USD"),
		timeUnit: pstrings.FirstNonEmpty(o.TimeUnit, "DAILY"),
	}
}

type filterClause struct {
	ComparisonOperator string   `json:"comparisonOperator"`
	Field              string   `json:"field"`
	Not                bool     `json:"not"`
	Values             []string `json:"values"`
}

type reportConfig struct {
	ReportID         string   `json:"reportId"`
	CurrencyOfView   string   `json:"currencyOfView"`
	EndDate          string   `json:"endDate"`
	Fields           []string `json:"fields"`
	Filter           struct {
		And []filterClause `json:"and"`
	} `json:"filter"`
	OffsetPagination struct {
		Size   int `json:"size"`
		Offset int `json:"offset"`
	} `json:"offsetPagination"`
	StartDate string   `json:"startDate"`
	TimeUnits []string `json:"timeUnits"`
}

type retrieveReq struct {
	ReportConfig reportConfig `json:"reportConfig"`
}

type campaignRow struct {
	CampaignName *string         `json:"campaignName"`
	Spend        decimal.Decimal `json:"spend"`
	State        string          `json:"state"`
}

type report struct {
	NumberOfRecords int           `json:"numberOfRecords"`
	Data            []campaignRow `json:"data"`
}

type retrieveResp struct {
	Report *report `json:"report"`
	Data   struct {
		Report *report `json:"report"`
	} `json:"data"`
}

// payload builds the retrieve body for one page of a single day
func (c *Client) payload(day string, offset, size int) retrieveReq {
	var rc reportConfig
	rc.ReportID = reportID
	rc.CurrencyOfView = c.currency
	rc.StartDate, rc.EndDate = day, day
	rc.Fields = []string{"campaignName", "spend", "state"}
	rc.Filter.And = []filterClause{{
		ComparisonOperator: "IN",
		Field:              "state",
		Values:             []string{"ENABLED", "PAUSED", "ARCHIVED"},
	}}
	rc.OffsetPagination.Size = size
	rc.OffsetPagination.Offset = offset
	rc.TimeUnits = []string{c.timeUnit}
	return retrieveReq{ReportConfig: rc}
}

// SpendPage fetches one page of campaign spend for day
func (c *Client) SpendPage(ctx context.Context, day string, offset, size int) (domain.Page[domain.CampaignSpendRow], error) {
	var page domain.Page[domain.CampaignSpendRow]

	body, err := json.Marshal(c.payload(day, offset, size))
	if err != nil {
		return page, perr.Wrap(err, perr.ErrorCodeJSON, "encode retrieveReport")
	}
	resp, err := c.up.Do(ctx, upstream.Request{
		Method:      http.MethodPost,
		Path:        pathRetrieve,
		Body:        body,
		ContentType: "application/json;charset=UTF-8",
	})
	if err != nil {
		return page, err
	}
	if !upstream.OK(resp.StatusCode) {
		return page, upstream.StatusError(resp, perr.ErrorCodeRequestFailed, "retrieveReport %d", resp.StatusCode)
	}

	text, err := upstream.ReadAll(resp.Body, 32<<20)
	if err != nil {
		return page, perr.Wrap(err, perr.ErrorCodeUnavailable, "read retrieveReport")
	}
	var out retrieveResp
	if text == "" {
		text = "{}"
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return page, perr.Wrapf(err, perr.ErrorCodeRequestFailed, "retrieveReport non-JSON: %s", pstrings.Snippet(text, upstream.SnippetLen))
	}

	rep := out.Report
	if rep == nil {
		rep = out.Data.Report
	}
	if rep == nil {
		return page, nil
	}
	page.Total = rep.NumberOfRecords
	page.Rows = make([]domain.CampaignSpendRow, 0, len(rep.Data))
	for _, r := range rep.Data {
		name := ""
		if r.CampaignName != nil {
			name = *r.CampaignName
		}
		page.Rows = append(page.Rows, domain.CampaignSpendRow{CampaignName: name, Date: day, Spend: r.Spend})
	}
	return page, nil
}
