// Package exchange fetches the National Bank of Romania (BNR) reference rates.
package exchange

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/documentiulia/backend/internal/infrastructure/cache"
	"github.com/documentiulia/backend/internal/infrastructure/config"
	"github.com/documentiulia/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	DefaultFeedURL  = "https://www.bnr.ro/nbrfxrates.xml"
	defaultCacheTTL = 12 * time.Hour
	defaultTimeout  = 10 * time.Second
	maxFeedSize     = 8 << 20
)

// ErrRateNotFound means BNR published no rate for the currency on or before the requested day.
var ErrRateNotFound = errors.New("exchange rate not found")

// DailyRates is one <Cube> of the feed: RON per one unit of each currency.
type DailyRates struct {
	Date  time.Time
	Rates map[string]decimal.Decimal
}

// Feed is a parsed BNR document, cubes sorted oldest first.
type Feed struct {
	Origin string
	Days   []DailyRates
}

// On returns the most recent publication on or before day.
func (f *Feed) On(day time.Time) (DailyRates, bool) {
	day = truncateDay(day)
	for i := len(f.Days) - 1; i >= 0; i-- {
		if !f.Days[i].Date.After(day) {
			return f.Days[i], true
		}
	}
	return DailyRates{}, false
}

type xmlDataSet struct {
	Body struct {
		OrigCurrency string    `xml:"OrigCurrency"`
		Cubes        []xmlCube `xml:"Cube"`
	} `xml:"Body"`
}

type xmlCube struct {
	Date  string    `xml:"date,attr"`
	Rates []xmlRate `xml:"Rate"`
}

type xmlRate struct {
	Currency   string `xml:"currency,attr"`
	Multiplier string `xml:"multiplier,attr"`
	Value      string `xml:",chardata"`
}

// ParseFeed reads nbrfxrates.xml and the yearly archives, which share one schema.
// Rates quoted per 100 units carry a multiplier and are divided back to one unit.
func ParseFeed(r io.Reader) (*Feed, error) {
	var ds xmlDataSet
	if err := xml.NewDecoder(r).Decode(&ds); err != nil {
		return nil, fmt.Errorf("parse BNR feed: %w", err)
	}

	feed := &Feed{Origin: strings.TrimSpace(ds.Body.OrigCurrency)}
	for _, cube := range ds.Body.Cubes {
		date, err := time.Parse(time.DateOnly, cube.Date)
		if err != nil {
			return nil, fmt.Errorf("parse BNR cube date %q: %w", cube.Date, err)
		}
		day := DailyRates{Date: date, Rates: make(map[string]decimal.Decimal, len(cube.Rates))}
		for _, r := range cube.Rates {
			value, err := decimal.NewFromString(strings.TrimSpace(r.Value))
			if err != nil {
				return nil, fmt.Errorf("parse BNR rate %s: %w", r.Currency, err)
			}
			if m := strings.TrimSpace(r.Multiplier); m != "" {
				mult, err := decimal.NewFromString(m)
				if err != nil || !mult.IsPositive() {
					return nil, fmt.Errorf("parse BNR multiplier %s: %q", r.Currency, m)
				}
				value = value.Div(mult)
			}
			day.Rates[strings.ToUpper(r.Currency)] = value
		}
		feed.Days = append(feed.Days, day)
	}
	sort.Slice(feed.Days, func(i, j int) bool { return feed.Days[i].Date.Before(feed.Days[j].Date) })
	return feed, nil
}

// BNRClient resolves RON reference rates, caching them per requested day.
type BNRClient struct {
	feedURL  string
	http     *http.Client
	cache    cache.RateCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewBNRClient(cfg config.ExchangeConfig, rates cache.RateCache, logger *zap.Logger) *BNRClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	feedURL := cfg.BNRURL
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &BNRClient{
		feedURL:  feedURL,
		http:     &http.Client{Timeout: timeout},
		cache:    rates,
		cacheTTL: ttl,
		logger:   logger.Named("bnr"),
	}
}

// Rate returns how many lei one unit of currency was worth on day.
// Weekends and holidays resolve to the last publication before them.
func (c *BNRClient) Rate(ctx context.Context, currency valueobject.Currency, day time.Time) (rate decimal.Decimal, err error) {
	code := strings.ToUpper(string(currency))
	if code == "" || code == string(valueobject.RON) {
		return decimal.NewFromInt(1), nil
	}
	day = truncateDay(day)

	if c.cache != nil {
		cached, ok, cerr := c.cache.Get(ctx, code, day)
		if cerr != nil {
			c.logger.Warn("rate cache read failed", zap.String("currency", code), zap.Error(cerr))
		} else if ok {
			return cached, nil
		}
	}

	ctx, span := telemetry.StartClientSpan(ctx, "bnr.rate",
		attribute.String("currency", code), attribute.String("day", day.Format(time.DateOnly)))
	defer func() { telemetry.EndSpan(span, err) }()

	rates, err := c.ratesOn(ctx, day)
	if err != nil {
		return decimal.Zero, err
	}
	rate, ok := rates.Rates[code]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s on %s", ErrRateNotFound, code, day.Format(time.DateOnly))
	}

	if c.cache != nil {
		for cur, r := range rates.Rates {
			if serr := c.cache.Set(ctx, cur, day, r, c.cacheTTL); serr != nil {
				c.logger.Warn("rate cache write failed", zap.String("currency", cur), zap.Error(serr))
				break
			}
		}
	}
	return rate, nil
}

// ratesOn looks in the current feed first and falls back to the yearly archive for older days.
func (c *BNRClient) ratesOn(ctx context.Context, day time.Time) (DailyRates, error) {
	feed, err := c.fetch(ctx, c.feedURL)
	if err != nil {
		return DailyRates{}, err
	}
	if rates, ok := feed.On(day); ok {
		return rates, nil
	}

	// Early January may need the last publication of the previous year.
	for _, year := range []int{day.Year(), day.Year() - 1} {
		archiveURL, err := c.yearURL(year)
		if err != nil {
			return DailyRates{}, err
		}
		archive, err := c.fetch(ctx, archiveURL)
		if err != nil {
			return DailyRates{}, err
		}
		if rates, ok := archive.On(day); ok {
			return rates, nil
		}
	}
	return DailyRates{}, fmt.Errorf("%w: no publication on or before %s", ErrRateNotFound, day.Format(time.DateOnly))
}

func (c *BNRClient) yearURL(year int) (string, error) {
	u, err := url.Parse(c.feedURL)
	if err != nil {
		return "", fmt.Errorf("parse BNR url: %w", err)
	}
	u.Path = fmt.Sprintf("/files/xml/years/nbrfxrates%d.xml", year)
	u.RawQuery = ""
	return u.String(), nil
}

func (c *BNRClient) fetch(ctx context.Context, target string) (*Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch BNR rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch BNR rates: HTTP %d from %s", resp.StatusCode, target)
	}
	return ParseFeed(io.LimitReader(resp.Body, maxFeedSize))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
