package injury

import "context"

type Repository interface {
	ListByTeam(ctx context.Context, teamID int64) ([]Injury, error)
}
