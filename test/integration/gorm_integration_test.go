package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"incident-reporting-be/internal/constant"
	"incident-reporting-be/internal/entity"
	"incident-reporting-be/internal/model"
	"incident-reporting-be/internal/repository/specification"
	"incident-reporting-be/internal/repository/unitofwork"
	"incident-reporting-be/pkg/checklist"
	"incident-reporting-be/pkg/database"
	"incident-reporting-be/pkg/oracle"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}
	if err := database.Migrate(gormDB, &model.Report{}); err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.ReportRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	ctx := context.Background()
	userId := uuid.New()
	reportId := uuid.New()

	t.Run("Upsert In-Progress Then Finalize", func(t *testing.T) {
		// First autosave creates the row.
		partial := &entity.Report{
			Id:         reportId,
			UserId:     userId,
			Mode:       constant.ModeEMS,
			Status:     constant.StatusInProgress,
			Transcript: "patient is responsive.",
			Checklist: []checklist.Item{
				{ID: checklist.ItemID("Check vitals"), Text: "Check vitals"},
			},
			Notes:     []string{},
			CreatedAt: time.Now(),
		}
		err := uow.ReportRepository().Upsert(ctx, partial)
		assert.NoError(t, err)

		// Later autosaves overwrite the same row instead of forking.
		partial.Transcript = "patient is responsive. vitals taken."
		err = uow.ReportRepository().Upsert(ctx, partial)
		assert.NoError(t, err)

		found, err := uow.ReportRepository().FindOne(ctx,
			specification.ByID{ID: reportId},
			specification.ReportOwnedByUser{UserID: userId},
		)
		assert.NoError(t, err)
		if assert.NotNil(t, found) {
			assert.Equal(t, constant.StatusInProgress, found.Status)
			assert.Equal(t, "patient is responsive. vitals taken.", found.Transcript)
			assert.Len(t, found.Checklist, 1)
		}

		// Finalization flips the same id to completed with full payload.
		partial.Status = constant.StatusCompleted
		partial.Category = "Medical"
		partial.Summary = "Responsive patient, vitals within normal limits."
		partial.Urgency = "Low"
		partial.Analysis = &oracle.Analysis{
			Summary:  partial.Summary,
			Category: partial.Category,
			Urgency:  partial.Urgency,
		}
		partial.Timeline = []oracle.TimelineEntry{{Time: "10:00", Event: "Arrived on scene"}}
		err = uow.ReportRepository().Upsert(ctx, partial)
		assert.NoError(t, err)

		count, err := uow.ReportRepository().Count(ctx, specification.ByID{ID: reportId})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Recovery Query Ignores Other Users", func(t *testing.T) {
		inProgress, err := uow.ReportRepository().FindAll(ctx,
			specification.ReportOwnedByUser{UserID: uuid.New()},
			specification.ByMode{Mode: constant.ModeEMS},
			specification.ByStatus{Status: constant.StatusInProgress},
		)
		assert.NoError(t, err)
		assert.Empty(t, inProgress)
	})

	t.Run("Transactional Delete", func(t *testing.T) {
		err := uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		err = uow.ReportRepository().Delete(ctx, reportId)
		assert.NoError(t, err)

		err = uow.Commit()
		assert.NoError(t, err)

		found, err := uow.ReportRepository().FindOne(ctx, specification.ByID{ID: reportId})
		assert.NoError(t, err)
		assert.Nil(t, found)
	})
}
