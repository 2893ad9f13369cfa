package queries

import (
	"errors"

	"parking/internal/core/domain/model/kernel"
	"parking/internal/pkg/guard"
)

var ErrGetSpotQueryIsNotConstructed = errors.New("GetSpotQuery must be created via NewGetSpotQuery constructor")

// GetSpotQuery reads one spot together with its active session, if any.
type GetSpotQuery struct {
	spotID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetSpotQuery(spotID kernel.UUID) (GetSpotQuery, error) {
	if err := spotID.Validate(); err != nil {
		return GetSpotQuery{}, err
	}
	return GetSpotQuery{spotID: spotID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetSpotQuery) Validate() error {
	return q.guard.Validate(ErrGetSpotQueryIsNotConstructed)
}

func (q GetSpotQuery) SpotID() kernel.UUID {
	return q.spotID
}
