package lineup

import "context"

// Repository returns lineup entries for teamID across the given games.
type Repository interface {
	ListByGames(ctx context.Context, teamID int64, gameIDs []int64) ([]Entry, error)
}
