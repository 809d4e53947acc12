package stats

import "context"

// Repository describes season average lookups. A missing team row is reported
// through the bool result, not as an error.
type Repository interface {
	ListPlayerAverages(ctx context.Context, query PlayerQuery) ([]SeasonAverage, error)
	GetTeamAverage(ctx context.Context, query TeamQuery) (TeamSeasonAverage, bool, error)
}
