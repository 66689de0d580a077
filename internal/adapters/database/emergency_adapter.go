package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/domain/repositories"
	"github.com/raksetu/bloodhub/internal/infrastructure/clients/postgres"
	apperrors "github.com/raksetu/bloodhub/pkg/errors"
)

const emergencyRequestsTable = "emergency_requests"

var emergencyColumns = []interface{}{
	"id", "hospital", "location", "latitude", "longitude",
	"blood_type", "urgency", "units", "donors_responded",
	"created_at", "notes", "contact_name", "contact_phone",
	"donor_response_time", "created_by",
}

// EmergencyAdapter implements the EmergencyRepository interface on Postgres
type EmergencyAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewEmergencyAdapter creates a new emergency adapter
func NewEmergencyAdapter(client *postgres.Client) repositories.EmergencyRepository {
	return &EmergencyAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// ListActive returns all active requests, newest first
func (a *EmergencyAdapter) ListActive(ctx context.Context) ([]entities.EmergencyRequest, error) {
	query, args, err := a.db.Select(emergencyColumns...).
		From(emergencyRequestsTable).
		Order(goqu.I("created_at").Desc().NullsLast(), goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list emergency requests", err)
	}
	defer rows.Close()

	requests := make([]entities.EmergencyRequest, 0)
	for rows.Next() {
		req, err := scanEmergency(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan emergency request", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate emergency requests", err)
	}

	return requests, nil
}

// GetByID retrieves a request by ID
func (a *EmergencyAdapter) GetByID(ctx context.Context, id string) (*entities.EmergencyRequest, error) {
	query, args, err := a.db.Select(emergencyColumns...).
		From(emergencyRequestsTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	req, err := scanEmergency(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("emergency request with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get emergency request", err)
	}

	return req, nil
}

// Create stores a new request
func (a *EmergencyAdapter) Create(ctx context.Context, req *entities.EmergencyRequest) error {
	if req == nil {
		return apperrors.NewInternalError("emergency request is nil", fmt.Errorf("emergency request is nil"))
	}

	record := goqu.Record{
		"id":               req.ID,
		"hospital":         req.Hospital,
		"location":         req.Location,
		"latitude":         nil,
		"longitude":        nil,
		"blood_type":       req.BloodType,
		"urgency":          req.Urgency,
		"units":            req.UnitsRequired(),
		"donors_responded": req.DonorCount(),
		"created_at":       timeOrNil(req.Timestamp),
		"notes":            nullString(req.Notes),
		"contact_name":     nullString(req.ContactName),
		"contact_phone":    nullString(req.ContactPhone),
		"created_by":       nullString(req.CreatedBy),
	}
	if req.Coordinates != nil {
		record["latitude"] = req.Coordinates.Latitude
		record["longitude"] = req.Coordinates.Longitude
	}

	query, args, err := a.db.Insert(emergencyRequestsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create emergency request", err)
	}

	return nil
}

// RecordDonorResponse increments the donor count and deletes the request once
// it is fulfilled, inside one transaction so concurrent responders cannot lose
// updates or skip the delete.
func (a *EmergencyAdapter) RecordDonorResponse(ctx context.Context, id string, at time.Time) (*entities.DonorResponseResult, error) {
	update, args, err := a.db.Update(emergencyRequestsTable).
		Set(goqu.Record{
			"donors_responded":    goqu.L(`COALESCE("donors_responded", 0) + 1`),
			"donor_response_time": at.UTC(),
		}).
		Where(goqu.Ex{"id": id}).
		Returning("donors_responded", "units").
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build update query", err)
	}

	result := &entities.DonorResponseResult{}
	err = a.client.WithTx(ctx, func(tx *sql.Tx) error {
		var units sql.NullInt64
		err := tx.QueryRowContext(ctx, update, args...).Scan(&result.DonorsResponded, &units)
		if err == sql.ErrNoRows {
			return apperrors.NewNotFoundError(fmt.Sprintf("emergency request with id %s not found", id))
		}
		if err != nil {
			return apperrors.NewInternalError("failed to record donor response", err)
		}

		result.Units = int(units.Int64)
		if result.Units < 1 {
			result.Units = 1
		}
		result.Fulfilled = result.DonorsResponded >= result.Units
		if !result.Fulfilled {
			return nil
		}

		del, delArgs, err := a.db.Delete(emergencyRequestsTable).Where(goqu.Ex{"id": id}).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build delete query", err)
		}
		if _, err := tx.ExecContext(ctx, del, delArgs...); err != nil {
			return apperrors.NewInternalError("failed to delete fulfilled emergency request", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "donor response transaction failed")
	}

	return result, nil
}

// Delete removes a request
func (a *EmergencyAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete(emergencyRequestsTable).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete emergency request", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("emergency request with id %s not found", id))
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmergency(row rowScanner) (*entities.EmergencyRequest, error) {
	req := &entities.EmergencyRequest{}
	var lat, lng sql.NullFloat64
	var units, donors sql.NullInt64
	var createdAt, responseTime sql.NullTime
	var notes, contactName, contactPhone, createdBy sql.NullString

	err := row.Scan(
		&req.ID,
		&req.Hospital,
		&req.Location,
		&lat,
		&lng,
		&req.BloodType,
		&req.Urgency,
		&units,
		&donors,
		&createdAt,
		&notes,
		&contactName,
		&contactPhone,
		&responseTime,
		&createdBy,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lng.Valid {
		req.Coordinates = &entities.Coordinates{Latitude: lat.Float64, Longitude: lng.Float64}
	}
	req.Units = int(units.Int64)
	req.DonorsResponded = int(donors.Int64)
	if createdAt.Valid {
		t := createdAt.Time
		req.Timestamp = &t
	}
	if responseTime.Valid {
		t := responseTime.Time
		req.DonorResponseTime = &t
	}
	req.Notes = notes.String
	req.ContactName = contactName.String
	req.ContactPhone = contactPhone.String
	req.CreatedBy = createdBy.String

	return req, nil
}

func timeOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
