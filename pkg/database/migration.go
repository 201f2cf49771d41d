package database

import "gorm.io/gorm"

var autoMigrateModels []interface{}

// RegisterAutoMigrate queues models for auto-migration. Models call this from
// their package init so Open picks them up without a central list.
func RegisterAutoMigrate(models ...interface{}) {
	autoMigrateModels = append(autoMigrateModels, models...)
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(autoMigrateModels...)
}
