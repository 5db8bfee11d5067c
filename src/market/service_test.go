package market

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/niveshpath/client/src/logger"
	"github.com/niveshpath/client/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

type fakeFetcher struct {
	currencyCalls int
	marketCalls   int
	newsCalls     int
	err           error
}

func (f *fakeFetcher) CurrencyRates(ctx context.Context) ([]models.CurrencyRate, error) {
	f.currencyCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []models.CurrencyRate{{Code: "USD", Name: "US Dollar", Rate: 83.25}}, nil
}

func (f *fakeFetcher) Markets(ctx context.Context) ([]models.MarketIndex, error) {
	f.marketCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []models.MarketIndex{{Name: "NIFTY 50", Value: 24500.5, ChangePct: 0.4}}, nil
}

func (f *fakeFetcher) RBINews(ctx context.Context) ([]models.NewsItem, error) {
	f.newsCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []models.NewsItem{{Title: "Repo rate unchanged"}}, nil
}

func TestRepeatReadsServedFromCache(t *testing.T) {
	fetcher := &fakeFetcher{}
	service := NewService(fetcher, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rates, err := service.GetCurrencyRates(ctx)
		if err != nil {
			t.Fatalf("GetCurrencyRates returned error: %v", err)
		}
		if len(rates) != 1 || rates[0].Code != "USD" {
			t.Errorf("rates = %+v", rates)
		}
	}
	if fetcher.currencyCalls != 1 {
		t.Errorf("fetcher called %d times, want 1", fetcher.currencyCalls)
	}

	if _, err := service.GetMarkets(ctx); err != nil {
		t.Fatalf("GetMarkets returned error: %v", err)
	}
	if _, err := service.GetMarkets(ctx); err != nil {
		t.Fatalf("GetMarkets returned error: %v", err)
	}
	if fetcher.marketCalls != 1 {
		t.Errorf("markets fetched %d times, want 1", fetcher.marketCalls)
	}

	if _, err := service.GetRBINews(ctx); err != nil {
		t.Fatalf("GetRBINews returned error: %v", err)
	}
	if _, err := service.GetRBINews(ctx); err != nil {
		t.Fatalf("GetRBINews returned error: %v", err)
	}
	if fetcher.newsCalls != 1 {
		t.Errorf("news fetched %d times, want 1", fetcher.newsCalls)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	fetcher := &fakeFetcher{}
	service := NewService(fetcher, nil)
	ctx := context.Background()

	if _, err := service.GetCurrencyRates(ctx); err != nil {
		t.Fatalf("GetCurrencyRates returned error: %v", err)
	}
	service.Invalidate()
	if _, err := service.GetCurrencyRates(ctx); err != nil {
		t.Fatalf("GetCurrencyRates returned error: %v", err)
	}
	if fetcher.currencyCalls != 2 {
		t.Errorf("fetcher called %d times after invalidation, want 2", fetcher.currencyCalls)
	}
}

func TestFetchErrorsAreNotCached(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("gateway timeout")}
	service := NewService(fetcher, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := service.GetCurrencyRates(ctx)
		if err == nil {
			t.Fatal("GetCurrencyRates succeeded, want error")
		}
		if !strings.Contains(err.Error(), "problem retrieving currency data") {
			t.Errorf("error = %v", err)
		}
	}
	if fetcher.currencyCalls != 2 {
		t.Errorf("fetcher called %d times, want 2 (failures must not be cached)", fetcher.currencyCalls)
	}
}
