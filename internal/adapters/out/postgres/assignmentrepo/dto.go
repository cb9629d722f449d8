// Package assignmentrepo persists driver assignments. The table holds at most
// one row per order; the dispatch race is decided by an atomic conditional
// upsert against that uniqueness.
package assignmentrepo

import (
	"time"

	"foodcourt/internal/core/domain/model/dispatch"
	"foodcourt/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// AssignmentDTO represents the database structure for driver assignments.
// OrderID is unique: an order has one assignment row whose driver and status
// change over the order's lifetime (active -> revoked -> active again on
// re-accept -> completed).
type AssignmentDTO struct {
	ID         uuid.UUID `gorm:"type:uuid"`
	OrderID    uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	DriverID   uuid.UUID `gorm:"type:uuid;index"`
	TenantID   uuid.UUID `gorm:"type:uuid;index"`
	Status     string
	AssignedAt time.Time
}

// TableName specifies the database table name for assignments.
func (AssignmentDTO) TableName() string {
	return "assignments"
}

func fromDomain(assignment *dispatch.Assignment) AssignmentDTO {
	return AssignmentDTO{
		ID:         assignment.ID().Bytes(),
		OrderID:    assignment.OrderID().Bytes(),
		DriverID:   assignment.DriverID().Bytes(),
		TenantID:   assignment.TenantID().Bytes(),
		Status:     string(assignment.Status()),
		AssignedAt: assignment.AssignedAt(),
	}
}

func toDomain(dto AssignmentDTO) (*dispatch.Assignment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	driverID, err := kernel.UUIDFromBytes(dto.DriverID[:])
	if err != nil {
		return nil, err
	}
	tenantID, err := kernel.UUIDFromBytes(dto.TenantID[:])
	if err != nil {
		return nil, err
	}

	return dispatch.RestoreAssignment(
		id, orderID, driverID, tenantID,
		dispatch.AssignmentStatus(dto.Status), dto.AssignedAt)
}
