package services

import (
	"fmt"

	"github.com/lamyda/lamyda-backend/internal/apperr"
)

// resolveSequential maps a 1-based sequential id onto a snapshot fetched in
// creation order (newest first). Within one snapshot the mapping is a
// bijection between position and id (id = position + 1); it is not stable
// across snapshots when other sessions create or delete entities in between.
func resolveSequential[T any](items []T, sequentialID int) (T, error) {
	var zero T
	if sequentialID < 1 || sequentialID > len(items) {
		return zero, apperr.NotFound("resolve sequential id",
			fmt.Errorf("sequential id %d out of range [1, %d]", sequentialID, len(items)))
	}
	return items[sequentialID-1], nil
}
