package client

import (
	"context"
	"fmt"

	"cdr.dev/slog/v3"

	"github.com/naveenspark/eversense/pkg/domain"
)

const patientListPath = "/api/care/GetFollowingPatientList"

// ListPatients returns every patient the follower account tracks, in API order.
func (c *Client) ListPatients(ctx context.Context) ([]domain.PatientRecord, error) {
	var patients []domain.PatientRecord
	err := c.get(ctx, patientListPath, nil, &patients)
	c.metrics.request("patients", err)
	if err != nil {
		return nil, fmt.Errorf("client.ListPatients: %w", err)
	}
	return patients, nil
}

// ResolveIdentity returns the tracked patient and their live snapshot. Only
// the first followed patient is used.
func (c *Client) ResolveIdentity(ctx context.Context) (*domain.Identity, error) {
	id, err := c.resolveIdentity(ctx)
	if err != nil {
		c.logger.Error(ctx, "failed to resolve user", slog.Error(err))
		return nil, fmt.Errorf("client.ResolveIdentity: %w", err)
	}
	c.logger.Debug(ctx, "resolved user",
		slog.F("user_id", id.UserID.String()),
		slog.F("trend", id.State.GlucoseTrend),
	)
	return id, nil
}

func (c *Client) resolveIdentity(ctx context.Context) (*domain.Identity, error) {
	patients, err := c.ListPatients(ctx)
	if err != nil {
		return nil, err
	}
	if len(patients) == 0 {
		return nil, ErrNoPatients
	}
	first := patients[0]
	if first.UserID.IsZero() {
		return nil, fmt.Errorf("%w: UserID", ErrMissingField)
	}
	return &domain.Identity{
		UserID: first.UserID,
		State:  first.State(),
	}, nil
}
