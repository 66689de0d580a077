package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/domain/repositories"
	"github.com/raksetu/bloodhub/internal/infrastructure/clients/postgres"
	apperrors "github.com/raksetu/bloodhub/pkg/errors"
)

const donationsTable = "donations"

// DonationAdapter implements donation history persistence in Postgres.
type DonationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDonationAdapter creates a new donation adapter.
func NewDonationAdapter(client *postgres.Client) repositories.DonationRepository {
	return &DonationAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// Create inserts a donation record.
func (a *DonationAdapter) Create(ctx context.Context, record *entities.DonationRecord) error {
	if record == nil {
		return apperrors.NewInternalError("donation is nil", fmt.Errorf("donation is nil"))
	}

	row := goqu.Record{
		"id":            record.ID,
		"user_id":       record.UserID,
		"request_id":    record.RequestID,
		"type":          record.Type,
		"hospital":      record.Hospital,
		"location":      record.Location,
		"blood_type":    record.BloodType,
		"units":         record.Units,
		"donation_date": record.Date,
		"donation_time": record.Time,
		"created_at":    record.CreatedAt,
	}

	query, args, err := a.db.Insert(donationsTable).Rows(row).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build donation insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create donation", err)
	}

	return nil
}

// ListByUser returns a user's donations, newest first.
func (a *DonationAdapter) ListByUser(ctx context.Context, userID string, limit int) ([]entities.DonationRecord, error) {
	ds := a.db.From(donationsTable).
		Select("id", "user_id", "request_id", "type", "hospital", "location",
			"blood_type", "units", "donation_date", "donation_time", "created_at").
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.I("created_at").Desc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var records []entities.DonationRecord
	if err := a.db.ScanStructsContext(ctx, &records, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list donations", err)
	}
	if records == nil {
		records = []entities.DonationRecord{}
	}

	return records, nil
}
