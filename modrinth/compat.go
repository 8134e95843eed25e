package modrinth

import (
	"context"

	"github.com/rs/zerolog/log"
)

// ProjectSource fetches project metadata. *Client implements it.
type ProjectSource interface {
	Project(ctx context.Context, id string) (*Project, error)
}

// Resolver gates installs on declared game version support.
type Resolver struct {
	Projects ProjectSource
}

// Check fetches the project and tests version membership.
// A non-nil error always comes with false.
func (r *Resolver) Check(ctx context.Context, id, version string) (bool, error) {
	p, err := r.Projects.Project(ctx, id)
	if err != nil {
		return false, err
	}
	return p.Supports(version), nil
}

// IsCompatible is Check with every failure collapsed into false.
func (r *Resolver) IsCompatible(ctx context.Context, id, version string) bool {
	ok, err := r.Check(ctx, id, version)
	if err != nil {
		log.Debug().Err(err).Str("project", id).Msg("compatibility check")
		return false
	}
	return ok
}
