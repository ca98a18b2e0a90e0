package sink

import (
	"net/url"
	"regexp"
	"strings"

	perr "reportrelay/internal/platform/errors"
	"reportrelay/internal/services/reports/domain"
)

var ingestSuffix = regexp.MustCompile(`(?i)/ext/ingest(?:/.*)?$`)

// URLs are the sink endpoints derived from one configured base
type URLs struct {
	Base       string
	ImportNew  string
	ReportAll  string
	AdsSpend   string
	LogCollect string
	Register   string
}

// DeriveURLs strips a trailing /ext/ingest path, query and fragment from raw and builds every endpoint
func DeriveURLs(raw string) (URLs, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return URLs{}, perr.InvalidArgf("sink url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return URLs{}, perr.WithField(perr.InvalidArgf("sink url %q is not absolute", raw), "url")
	}
	u.RawQuery, u.Fragment = "", ""
	u.Path = strings.TrimRight(ingestSuffix.ReplaceAllString(u.Path, ""), "/")
	u.RawPath = ""

	base := u.String()
	return URLs{
		Base:       base,
		ImportNew:  base + "/api/order/update-from-xlsx",
		ReportAll:  base + "/api/report/import-file",
		AdsSpend:   base + "/api/ads/import-day",
		LogCollect: base + "/api/logs/ext/log",
		Register:   base + "/api/shop/ext/connect",
	}, nil
}

// For returns the upload endpoint of a kind
func (u URLs) For(kind domain.Kind) (string, error) {
	switch kind {
	case domain.KindNewOrders:
		return u.ImportNew, nil
	case domain.KindAllOrders:
		return u.ReportAll, nil
	case domain.KindAdSpend:
		return u.AdsSpend, nil
	}
	return "", perr.InvalidArgf("no sink endpoint for kind %q", kind)
}
