package domain

import (
	"context"
	"errors"
	"time"
)

type QueryKind string

const (
	QueryCategorySpend QueryKind = "category_spend"
	QueryMerchantSpend QueryKind = "merchant_spend"
	QueryCashPosition  QueryKind = "cash_position"
)

func (k QueryKind) Valid() bool {
	switch k {
	case QueryCategorySpend, QueryMerchantSpend, QueryCashPosition:
		return true
	}
	return false
}

type QueryRequest struct {
	Kind QueryKind `json:"kind" binding:"required"`
	Days int       `json:"days"`
}

type QueryRow struct {
	Label string `json:"label"`
	Total int64  `json:"total"`
	Count int    `json:"count"`
}

type QueryResult struct {
	Kind   QueryKind  `json:"kind"`
	Since  time.Time  `json:"since"`
	Rows   []QueryRow `json:"rows"`
}

type Insight struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Delta   int64  `json:"delta"`
}

type ForecastPoint struct {
	Date    time.Time `json:"date"`
	Balance int64     `json:"balance"`
}

type Forecast struct {
	Horizon int             `json:"horizon_days"`
	Daily   int64           `json:"daily_net"`
	Points  []ForecastPoint `json:"points"`
}

// Service answers the premium intelligence surfaces. Access is gated
// upstream, every method still assumes an organization in context.
type Service interface {
	Query(ctx context.Context, req QueryRequest) (*QueryResult, error)
	Insights(ctx context.Context) ([]Insight, error)
	Forecast(ctx context.Context, horizonDays int) (*Forecast, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidQueryKind    = errors.New("invalid_query_kind")
	ErrInvalidHorizon      = errors.New("invalid_horizon")
)
