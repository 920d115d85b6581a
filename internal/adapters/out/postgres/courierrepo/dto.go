// Package courierrepo provides data transfer objects and mapping functions for courier persistence.
// Couriers are split across two stores: identity and approval live in Postgres,
// while location pings live in the expiring location store. The repository
// merges both views into a single aggregate on read.
package courierrepo

import (
	"github.com/google/uuid"
)

// CourierDTO represents the database structure for persisting courier identity.
// Location pings are deliberately absent: they come from the location store
// and expire there on their own.
type CourierDTO struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string
	Approved bool `gorm:"index"`
}

// TableName specifies the database table name for courier entities.
// Overrides GORM's default naming convention to use "couriers".
func (CourierDTO) TableName() string {
	return "couriers"
}
