package testutil

import (
	"projectflow-api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewInMemoryDB creates an in-memory SQLite DB and runs migrations.
func NewInMemoryDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.TicketSequence{},
		&models.Ticket{},
		&models.Comment{},
		&models.Activity{},
		&models.Meeting{},
		&models.MeetingParticipant{},
		&models.Notification{},
	); err != nil {
		return nil, err
	}
	return db, nil
}
