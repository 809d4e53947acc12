package odds

import "context"

type Repository interface {
	ListGameOdds(ctx context.Context, gameID int64) ([]GameOdds, error)
	ListPlayerProps(ctx context.Context, gameID int64) ([]PlayerProp, error)
}
