package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/documentiulia/backend/internal/infrastructure/cache"
	"github.com/documentiulia/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const latestFeed = `<?xml version="1.0" encoding="utf-8"?>
<DataSet xmlns="http://www.bnr.ro/xsd" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
	<Header>
		<Publisher>National Bank of Romania</Publisher>
		<PublishingDate>2026-10-16</PublishingDate>
		<MessageType>DR</MessageType>
	</Header>
	<Body>
		<Subject>Reference rates</Subject>
		<OrigCurrency>RON</OrigCurrency>
		<Cube date="2026-10-16">
			<Rate currency="EUR">4.9767</Rate>
			<Rate currency="USD">4.5812</Rate>
			<Rate currency="HUF" multiplier="100">1.2480</Rate>
		</Cube>
	</Body>
</DataSet>`

const archive2026 = `<?xml version="1.0" encoding="utf-8"?>
<DataSet xmlns="http://www.bnr.ro/xsd">
	<Body>
		<OrigCurrency>RON</OrigCurrency>
		<Cube date="2026-03-13"><Rate currency="EUR">4.9701</Rate></Cube>
		<Cube date="2026-03-12"><Rate currency="EUR">4.9690</Rate></Cube>
		<Cube date="2026-01-05"><Rate currency="EUR">4.9750</Rate></Cube>
	</Body>
</DataSet>`

const archive2025 = `<?xml version="1.0" encoding="utf-8"?>
<DataSet xmlns="http://www.bnr.ro/xsd">
	<Body>
		<OrigCurrency>RON</OrigCurrency>
		<Cube date="2025-12-31"><Rate currency="EUR">4.9740</Rate></Cube>
	</Body>
</DataSet>`

func newBNRServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		switch r.URL.Path {
		case "/nbrfxrates.xml":
			_, _ = w.Write([]byte(latestFeed))
		case "/files/xml/years/nbrfxrates2026.xml":
			_, _ = w.Write([]byte(archive2026))
		case "/files/xml/years/nbrfxrates2025.xml":
			_, _ = w.Write([]byte(archive2025))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server, rates cache.RateCache) *BNRClient {
	return NewBNRClient(config.ExchangeConfig{BNRURL: srv.URL + "/nbrfxrates.xml"}, rates, zap.NewNop())
}

func TestParseFeed(t *testing.T) {
	feed, err := ParseFeed(strings.NewReader(latestFeed))
	require.NoError(t, err)

	assert.Equal(t, "RON", feed.Origin)
	require.Len(t, feed.Days, 1)
	day := feed.Days[0]
	assert.Equal(t, "2026-10-16", day.Date.Format(time.DateOnly))
	assert.True(t, decimal.RequireFromString("4.9767").Equal(day.Rates["EUR"]))
	assert.True(t, decimal.RequireFromString("0.01248").Equal(day.Rates["HUF"]))
}

func TestParseFeed_SortsAndFindsLatestOnOrBefore(t *testing.T) {
	feed, err := ParseFeed(strings.NewReader(archive2026))
	require.NoError(t, err)
	require.Len(t, feed.Days, 3)
	assert.Equal(t, "2026-01-05", feed.Days[0].Date.Format(time.DateOnly))

	// Saturday resolves to Friday's publication.
	rates, ok := feed.On(time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "2026-03-13", rates.Date.Format(time.DateOnly))

	_, ok = feed.On(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestParseFeed_Invalid(t *testing.T) {
	_, err := ParseFeed(strings.NewReader("<DataSet><Body><Cube date=\"yesterday\"/></Body></DataSet>"))
	assert.Error(t, err)

	_, err = ParseFeed(strings.NewReader(`<DataSet><Body><Cube date="2026-01-05"><Rate currency="EUR">abc</Rate></Cube></Body></DataSet>`))
	assert.Error(t, err)

	_, err = ParseFeed(strings.NewReader("not xml"))
	assert.Error(t, err)
}

func TestBNRClient_RONIsOne(t *testing.T) {
	c := NewBNRClient(config.ExchangeConfig{BNRURL: "http://127.0.0.1:1/unused"}, nil, nil)
	rate, err := c.Rate(context.Background(), valueobject.RON, time.Now())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1).Equal(rate))
}

func TestBNRClient_RateFromLatestFeed(t *testing.T) {
	var hits atomic.Int32
	srv := newBNRServer(t, &hits)
	rates := cache.NewInMemoryRateCache()
	c := newTestClient(srv, rates)

	day := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	rate, err := c.Rate(context.Background(), valueobject.EUR, day)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("4.9767").Equal(rate))
	assert.Equal(t, int32(1), hits.Load())

	// Every currency of the publication is cached for the requested day.
	usd, err := c.Rate(context.Background(), valueobject.USD, day)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("4.5812").Equal(usd))
	assert.Equal(t, int32(1), hits.Load())
}

func TestBNRClient_FallsBackToYearlyArchive(t *testing.T) {
	srv := newBNRServer(t, nil)
	c := newTestClient(srv, nil)

	rate, err := c.Rate(context.Background(), valueobject.EUR, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("4.9690").Equal(rate))
}

func TestBNRClient_EarlyJanuaryUsesPreviousYear(t *testing.T) {
	srv := newBNRServer(t, nil)
	c := newTestClient(srv, nil)

	rate, err := c.Rate(context.Background(), valueobject.EUR, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("4.9740").Equal(rate))
}

func TestBNRClient_UnknownCurrency(t *testing.T) {
	srv := newBNRServer(t, nil)
	c := newTestClient(srv, nil)

	_, err := c.Rate(context.Background(), valueobject.CHF, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateNotFound))
}

func TestBNRClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	c := newTestClient(srv, nil)

	_, err := c.Rate(context.Background(), valueobject.EUR, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}
