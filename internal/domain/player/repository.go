package player

import "context"

// Repository describes roster lookups needed by use cases.
type Repository interface {
	ListByTeam(ctx context.Context, teamID int64) ([]Player, error)
}
