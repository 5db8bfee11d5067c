package market

import (
	"context"
	"fmt"
	"time"

	"github.com/niveshpath/client/src/logger"
	"github.com/niveshpath/client/src/models"
	"github.com/patrickmn/go-cache"
)

const (
	ckCurrencyRates = "ext_currency_rates"
	ckMarketIndices = "ext_market_indices"
	ckRBINews       = "ext_rbi_news"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

// Fetcher is the slice of the backend client the dashboard needs.
type Fetcher interface {
	CurrencyRates(ctx context.Context) ([]models.CurrencyRate, error)
	Markets(ctx context.Context) ([]models.MarketIndex, error)
	RBINews(ctx context.Context) ([]models.NewsItem, error)
}

// Service serves the dashboard's market widgets from a TTL cache so repeated
// dashboard visits within the window cost no network round-trips.
type serviceImpl struct {
	fetcher   Fetcher
	dataCache *cache.Cache
}

type Service interface {
	GetCurrencyRates(ctx context.Context) ([]models.CurrencyRate, error)
	GetMarkets(ctx context.Context) ([]models.MarketIndex, error)
	GetRBINews(ctx context.Context) ([]models.NewsItem, error)
	Invalidate()
}

func NewService(fetcher Fetcher, dataCache *cache.Cache) Service {
	if dataCache == nil {
		dataCache = cache.New(DefaultCacheExpiration, CacheCleanupInterval)
	}
	return &serviceImpl{fetcher: fetcher, dataCache: dataCache}
}

func (s *serviceImpl) GetCurrencyRates(ctx context.Context) ([]models.CurrencyRate, error) {
	if cached, found := s.dataCache.Get(ckCurrencyRates); found {
		return cached.([]models.CurrencyRate), nil
	}

	rates, err := s.fetcher.CurrencyRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("problem retrieving currency data: %w", err)
	}
	s.dataCache.Set(ckCurrencyRates, rates, cache.DefaultExpiration)
	logger.L.Debug("Currency rates refreshed", "count", len(rates))
	return rates, nil
}

func (s *serviceImpl) GetMarkets(ctx context.Context) ([]models.MarketIndex, error) {
	if cached, found := s.dataCache.Get(ckMarketIndices); found {
		return cached.([]models.MarketIndex), nil
	}

	indices, err := s.fetcher.Markets(ctx)
	if err != nil {
		return nil, fmt.Errorf("problem retrieving market data: %w", err)
	}
	s.dataCache.Set(ckMarketIndices, indices, cache.DefaultExpiration)
	logger.L.Debug("Market indices refreshed", "count", len(indices))
	return indices, nil
}

func (s *serviceImpl) GetRBINews(ctx context.Context) ([]models.NewsItem, error) {
	if cached, found := s.dataCache.Get(ckRBINews); found {
		return cached.([]models.NewsItem), nil
	}

	news, err := s.fetcher.RBINews(ctx)
	if err != nil {
		return nil, fmt.Errorf("problem retrieving news data: %w", err)
	}
	s.dataCache.Set(ckRBINews, news, cache.DefaultExpiration)
	return news, nil
}

// Invalidate drops all cached widgets, forcing fresh fetches on next read.
func (s *serviceImpl) Invalidate() {
	s.dataCache.Delete(ckCurrencyRates)
	s.dataCache.Delete(ckMarketIndices)
	s.dataCache.Delete(ckRBINews)
}
