package postgresql

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/bdedica/tramite/pkg/persistence"
	"github.com/lib/pq"
)

// mapError translates driver errors into the persistence taxonomy so no
// backing-store text reaches callers through the sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "23": // integrity_constraint_violation
			if pqErr.Constraint == "transitions_origin_stage_id_key" {
				return fmt.Errorf("%w: %s", persistence.ErrTransitionExists, pqErr.Constraint)
			}

			return fmt.Errorf("%w: %s", persistence.ErrIntegrityViolation, pqErr.Code.Name())
		case "08", "53", "57": // connection, resource, operator intervention
			return fmt.Errorf("%w: %s", persistence.ErrStoreUnavailable, pqErr.Code.Name())
		}
	}

	if errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: bad connection", persistence.ErrStoreUnavailable)
	}

	return err
}
