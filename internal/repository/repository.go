package repository

import "context"

// Repository defines the local key-value storage the client keeps between
// restarts: the bearer token, the selected language, the last known location
// and the anonymous session id. It plays the role browser local storage plays
// for a web client.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	GetAll(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
