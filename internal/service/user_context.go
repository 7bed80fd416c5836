package service

import (
	"context"
	"fmt"

	"kishanmitra/client/internal/model"
)

// UserContextResolver assembles the ambient parameters attached to every
// query from the stored preferences and the current identity.
type UserContextResolver struct {
	auth     *AuthService
	settings *SettingsService
}

func NewUserContextResolver(auth *AuthService, settings *SettingsService) *UserContextResolver {
	return &UserContextResolver{auth: auth, settings: settings}
}

// Resolve never fails because the location is unknown; coordinates are then
// left unset and sent as 0,0.
func (r *UserContextResolver) Resolve(ctx context.Context) (model.UserContext, error) {
	var uc model.UserContext

	identity, err := r.auth.Current(ctx)
	if err != nil {
		return uc, fmt.Errorf("could not read identity: %w", err)
	}
	if identity != nil {
		uc.UserID = identity.UserID
	} else {
		id, err := r.settings.AnonymousID(ctx)
		if err != nil {
			return uc, err
		}
		uc.UserID = id
		uc.Anonymous = true
	}

	if uc.Language, err = r.settings.Language(ctx); err != nil {
		return uc, err
	}

	loc, err := r.settings.Location(ctx)
	if err != nil {
		return uc, err
	}
	uc.Coordinates = loc.Coordinates
	return uc, nil
}
