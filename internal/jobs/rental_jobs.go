package jobs

import (
	"context"

	"rental-backoffice/internal/logger"
)

// CheckOverdueRentals flags active rentals whose expected end has passed.
// Running it again before any new rental expires changes nothing.
func (jr *JobRunner) CheckOverdueRentals() {
	jr.runWithRecovery("CheckOverdueRentals", func(ctx context.Context) error {
		n, err := jr.services.Rental.CheckOverdueRentals(ctx)
		if err != nil {
			return err
		}
		logger.Info("Marked rentals as overdue", "count", n)
		return nil
	})
}
