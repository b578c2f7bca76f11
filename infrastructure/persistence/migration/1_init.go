package migration

import (
	"fmt"

	"github.com/hilthontt/roombot/domain/model"
	"gorm.io/gorm"
)

// Up1 creates the rooms table and keeps its columns in step with model.RoomRecord.
func Up1(database *gorm.DB) error {
	tables := []any{}
	tables = addNewTable(database, &model.RoomRecord{}, tables)

	if len(tables) > 0 {
		if err := database.Migrator().CreateTable(tables...); err != nil {
			return fmt.Errorf("error creating tables: %w", err)
		}
	}

	if err := database.AutoMigrate(&model.RoomRecord{}); err != nil {
		return fmt.Errorf("error migrating rooms: %w", err)
	}
	return nil
}

func addNewTable(database *gorm.DB, model any, tables []any) []any {
	if !database.Migrator().HasTable(model) {
		tables = append(tables, model)
	}
	return tables
}
