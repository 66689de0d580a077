package main

import (
	"context"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/raksetu/bloodhub/internal/adapters/database"
	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/infrastructure/clients/postgres"
	"github.com/raksetu/bloodhub/internal/infrastructure/observability"
	"github.com/raksetu/bloodhub/migrations"
	"github.com/raksetu/bloodhub/pkg/config"
	"github.com/raksetu/bloodhub/pkg/secrets"
)

func main() {
	vaultResult, err := secrets.ApplyVaultSecrets(context.Background(), secrets.LoadVaultConfigFromEnv())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load secrets from Vault")
	}
	if vaultResult.Enabled {
		log.Info().Str("path", vaultResult.Path).Strs("loaded", vaultResult.Loaded).Strs("skipped", vaultResult.Skipped).Msg("Vault secrets applied")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("bloodhub-seed", cfg.Env, cfg.LogLevel)

	ctx := context.Background()

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer pgClient.Close()

	applied, err := migrations.Apply(ctx, pgClient.DB())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}
	log.Info().Strs("files", applied).Msg("Schema applied")

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				emergency_requests,
				donations,
				users,
				identities
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to reset tables")
		}
	}

	// 1. Seed identities
	identities := []entities.Identity{
		{UID: "dev-user", DisplayName: "Dev Donor", Email: "dev@bloodhub.local", PhoneNumber: "+919800000001"},
		{UID: "donor-asha", DisplayName: "Asha Rao", Email: "asha@example.com", PhoneNumber: "+919800000002"},
		{UID: "donor-vikram", DisplayName: "Vikram Shah", Email: "vikram@example.com"},
	}

	db := pgClient.Goqu()
	for _, id := range identities {
		query, args, err := db.Insert("identities").
			Rows(goqu.Record{
				"uid":          id.UID,
				"display_name": id.DisplayName,
				"email":        id.Email,
				"phone_number": id.PhoneNumber,
				"updated_at":   time.Now().UTC(),
			}).
			OnConflict(goqu.DoUpdate("uid", goqu.Record{
				"display_name": goqu.L("EXCLUDED.display_name"),
				"email":        goqu.L("EXCLUDED.email"),
				"phone_number": goqu.L("EXCLUDED.phone_number"),
			})).
			ToSQL()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build identity insert")
		}
		if _, err := pgClient.DB().ExecContext(ctx, query, args...); err != nil {
			log.Error().Err(err).Str("uid", id.UID).Msg("Failed to seed identity")
		}
	}

	// 2. Seed profiles
	profileRepo := database.NewProfileAdapter(pgClient)
	profiles := []entities.ProfileDocument{
		{UID: "dev-user", Name: "Dev Donor", Phone: "+919800000001", BloodType: entities.BloodTypeONegative, DOB: "1994-03-12", LastDonated: "2026-05-02", Address: "12 MG Road", City: "Bengaluru"},
		{UID: "donor-asha", Name: "Asha Rao", Phone: "+919800000002", BloodType: entities.BloodTypeBombay, DOB: "1989-11-30", City: "Mumbai"},
		{UID: "donor-vikram", Name: "Vikram Shah", BloodType: entities.BloodTypeAPositive, City: "Delhi"},
	}
	for i := range profiles {
		if err := profileRepo.Update(ctx, &profiles[i]); err != nil {
			log.Error().Err(err).Str("uid", profiles[i].UID).Msg("Failed to seed profile")
		}
	}

	// 3. Seed emergency requests
	emergencyRepo := database.NewEmergencyAdapter(pgClient)
	now := time.Now().UTC()
	ago := func(d time.Duration) *time.Time {
		t := now.Add(-d)
		return &t
	}

	requests := []entities.EmergencyRequest{
		{
			Hospital: "Manipal Hospital", Location: "Old Airport Road, Bengaluru",
			Coordinates: &entities.Coordinates{Latitude: 12.9592, Longitude: 77.6484},
			BloodType:   entities.BloodTypeONegative, Urgency: entities.UrgencyCritical, Units: 3,
			Timestamp: ago(20 * time.Minute), Notes: "Trauma case, surgery scheduled",
			ContactName: "Dr. Menon", ContactPhone: "+918040000001",
		},
		{
			Hospital: "KEM Hospital", Location: "Parel, Mumbai",
			Coordinates: &entities.Coordinates{Latitude: 19.0024, Longitude: 72.8417},
			BloodType:   entities.BloodTypeBombay, Urgency: entities.UrgencyCritical, Units: 1,
			Timestamp: ago(45 * time.Minute), Notes: "Bombay phenotype, cross-match pending",
		},
		{
			Hospital: "AIIMS", Location: "Ansari Nagar, New Delhi",
			Coordinates: &entities.Coordinates{Latitude: 28.5672, Longitude: 77.2100},
			BloodType:   entities.BloodTypeAPositive, Urgency: entities.UrgencyUrgent, Units: 2,
			DonorsResponded: 1, Timestamp: ago(3 * time.Hour),
		},
		{
			Hospital: "St. John's Medical College", Location: "Koramangala, Bengaluru",
			BloodType: entities.BloodTypeBPositive, Urgency: entities.UrgencyStandard,
			Timestamp: ago(26 * time.Hour),
		},
	}

	for i := range requests {
		requests[i].ID = uuid.New().String()
		requests[i].CreatedBy = "seed"
		if err := emergencyRepo.Create(ctx, &requests[i]); err != nil {
			log.Error().Err(err).Str("hospital", requests[i].Hospital).Msg("Failed to seed emergency request")
		}
	}

	log.Info().
		Int("identities", len(identities)).
		Int("profiles", len(profiles)).
		Int("emergencies", len(requests)).
		Msg("Seeding completed")
}
