package owners

import "context"

type Repository interface {
	Register(ctx context.Context, username string) error
	Exists(ctx context.Context, username string) (bool, error)
	Lock(ctx context.Context, username string) error
}
