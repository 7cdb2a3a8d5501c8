package bulk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notifier/internal/domain"
	"notifier/internal/infra"
)

// Sweeper turns due customers into reminder jobs on a schedule. It is the
// automated counterpart of a seller pressing "notify everyone".
type Sweeper struct {
	customers  domain.CustomerRepository
	tracking   domain.NotificationRepository
	sellers    domain.SellerRepository
	runner     *Runner
	logger     infra.Logger
	windowDays int
	now        func() time.Time
}

func NewSweeper(
	customers domain.CustomerRepository,
	tracking domain.NotificationRepository,
	sellers domain.SellerRepository,
	runner *Runner,
	logger infra.Logger,
	windowDays int,
) *Sweeper {
	if windowDays <= 0 {
		windowDays = 3
	}
	return &Sweeper{
		customers:  customers,
		tracking:   tracking,
		sellers:    sellers,
		runner:     runner,
		logger:     logger,
		windowDays: windowDays,
		now:        time.Now,
	}
}

// Sweep collects customers expired or due within the reminder window,
// drops the ones already notified for this cycle, and starts one job per
// seller. Sellers with an active job or missing gateway credentials are
// skipped, not errored.
func (s *Sweeper) Sweep(ctx context.Context) error {
	now := s.now()
	due, err := s.customers.ListDue(ctx, now, time.Duration(s.windowDays)*24*time.Hour)
	if err != nil {
		return fmt.Errorf("list due customers: %w", err)
	}

	bySeller := make(map[string][]domain.JobItem)
	for _, customer := range due {
		kind := KindFor(now, customer.DueDate, s.windowDays)
		seen, err := s.tracking.Exists(ctx, customer.ID, kind, CycleDate(customer.DueDate))
		if err != nil {
			return fmt.Errorf("check tracking: %w", err)
		}
		if seen {
			continue
		}
		bySeller[customer.SellerID] = append(bySeller[customer.SellerID], itemFromCustomer(customer))
	}

	started := 0
	for sellerID, items := range bySeller {
		pace := -1
		if seller, err := s.sellers.GetByID(ctx, sellerID); err == nil && seller.PaceSeconds > 0 {
			pace = seller.PaceSeconds
		}
		jobID, err := s.runner.Start(ctx, sellerID, items, pace)
		switch {
		case errors.Is(err, domain.ErrConflict):
			s.logger.Info().Str("seller_id", sellerID).Msg("sweep: seller has an active job, skipping")
		case errors.Is(err, domain.ErrNoCredentials):
			s.logger.Warn().Str("seller_id", sellerID).Msg("sweep: seller has no gateway credentials, skipping")
		case err != nil:
			s.logger.Error().Err(err).Str("seller_id", sellerID).Msg("sweep: failed to start job")
		default:
			started++
			s.logger.Info().
				Str("seller_id", sellerID).
				Str("job_id", jobID).
				Int("items", len(items)).
				Msg("sweep: reminder job started")
		}
	}
	s.logger.Info().Int("sellers", len(bySeller)).Int("jobs", started).Msg("sweep: finished")
	return nil
}

func itemFromCustomer(c domain.Customer) domain.JobItem {
	return domain.JobItem{
		CustomerID: c.ID,
		Name:       c.Name,
		Phone:      c.Phone,
		Category:   c.Category,
		DueDate:    c.DueDate,
		Fields: map[string]string{
			"plan":   c.Plan,
			"amount": c.Amount,
		},
	}
}
