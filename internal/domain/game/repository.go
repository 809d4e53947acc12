package game

import "context"

// Repository describes schedule lookups. Dates use DateLayout.
type Repository interface {
	ListByDate(ctx context.Context, date string) ([]Game, error)
	ListRecentFinal(ctx context.Context, teamID int64, season, limit int) ([]Game, error)
	ListFrom(ctx context.Context, startDate string) ([]Game, error)
}
