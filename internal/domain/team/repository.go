package team

import "context"

// Repository describes the team reference data needed by use cases.
type Repository interface {
	List(ctx context.Context) ([]Team, error)
}
