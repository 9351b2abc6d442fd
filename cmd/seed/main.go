package main

import (
	"log"
	"os"
	"time"

	"incident-reporting-be/internal/constant"
	"incident-reporting-be/internal/entity"
	"incident-reporting-be/internal/mapper"
	"incident-reporting-be/pkg/checklist"
	"incident-reporting-be/pkg/database"
	"incident-reporting-be/pkg/oracle"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Seeds one completed demo report per mode for a given user, so the
// history views have data before the first real recording.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}
	userIDStr := os.Getenv("SEED_USER_ID")
	if userIDStr == "" {
		log.Fatal("Error: SEED_USER_ID is not set")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		log.Fatal("Error: SEED_USER_ID is not a valid UUID:", err)
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding demo reports...")

	now := time.Now()
	reportMapper := mapper.NewReportMapper()

	demos := []*entity.Report{
		{
			Id:         uuid.New(),
			UserId:     userID,
			Mode:       constant.ModeEMS,
			Status:     constant.StatusCompleted,
			Category:   "Cardiac",
			Summary:    "67 year old male with chest pain, treated and transported.",
			Urgency:    "High",
			Transcript: "Patient is a 67 year old male complaining of chest pain radiating to the left arm. BP 150 over 90, pulse 110.",
			Analysis: &oracle.Analysis{
				Summary:        "67 year old male with chest pain, treated and transported.",
				Category:       "Cardiac",
				Urgency:        "High",
				ChiefComplaint: "Chest pain radiating to the left arm",
				PatientInfo:    map[string]any{"age": "67", "sex": "male"},
				VitalsTimeline: []oracle.TimelineEntry{
					{Time: "14:02", Event: "BP 150/90, pulse 110"},
				},
			},
			Timeline: []oracle.TimelineEntry{
				{Time: "14:00", Event: "Arrived on scene"},
				{Time: "14:05", Event: "Administered aspirin"},
				{Time: "14:12", Event: "Transport initiated"},
			},
			ActionItems:  []string{"Complete patient care report", "Restock aspirin"},
			ActionsTaken: []string{"Administered aspirin", "Obtained 12-lead ECG"},
			Hazards:      []string{},
			Checklist: []checklist.Item{
				{ID: checklist.ItemID("Obtain 12-lead ECG"), Text: "Obtain 12-lead ECG", IsCompleted: true},
				{ID: checklist.ItemID("Establish IV access"), Text: "Establish IV access", IsCompleted: false},
			},
			Notes:     []string{"patient refused nitroglycerin."},
			CreatedAt: now.Add(-48 * time.Hour),
		},
		{
			Id:         uuid.New(),
			UserId:     userID,
			Mode:       constant.ModeFire,
			Status:     constant.StatusCompleted,
			Category:   "Structure Fire",
			Summary:    "Single-story residential fire, knocked down within 20 minutes.",
			Urgency:    "High",
			Transcript: "Heavy smoke showing from the alpha side. Crews making entry through the front door.",
			Analysis: &oracle.Analysis{
				Summary:   "Single-story residential fire, knocked down within 20 minutes.",
				Category:  "Structure Fire",
				Urgency:   "High",
				SceneInfo: map[string]any{"structure": "single-story residential", "smoke": "heavy, alpha side"},
				NERISData: map[string]any{"incident_type": "111"},
			},
			Timeline: []oracle.TimelineEntry{
				{Time: "02:14", Event: "On scene, heavy smoke showing"},
				{Time: "02:18", Event: "Primary attack line in service"},
				{Time: "02:34", Event: "Fire knocked down"},
			},
			ActionItems:  []string{"File NERIS incident report"},
			ActionsTaken: []string{"Primary search completed", "Utilities secured"},
			Hazards:      []string{"Compromised roof on the delta side"},
			Checklist: []checklist.Item{
				{ID: checklist.ItemID("Complete primary search"), Text: "Complete primary search", IsCompleted: true},
				{ID: checklist.ItemID("Secure utilities"), Text: "Secure utilities", IsCompleted: true},
			},
			Notes:     []string{"hydrant on the corner was inoperative."},
			CreatedAt: now.Add(-24 * time.Hour),
		},
	}

	for _, demo := range demos {
		row := reportMapper.ToModel(demo)
		if err := db.Create(row).Error; err != nil {
			log.Printf("Error creating demo report (%s): %v", demo.Mode, err)
			continue
		}
		log.Printf("Created demo report: %s (%s)", demo.Summary, demo.Mode)
	}

	log.Println("Demo report seeding completed!")
}
