package assignmentrepo

import (
	"context"
	"errors"

	"foodcourt/internal/core/domain/model/dispatch"
	"foodcourt/internal/core/domain/model/kernel"

	"gorm.io/gorm"
)

// GormAssignmentRepository implements ports.AssignmentRepository using GORM.
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewGormAssignmentRepository creates a new GORM assignment repository.
func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// CreateIfAbsent claims the order for the assignment's driver. The decision
// is a single conditional upsert: insert the row, or take over an existing
// row only if its assignment is no longer active. Postgres serializes
// conflicting upserts on the order_id uniqueness, so of N concurrent accepts
// exactly one reports created=true.
func (r *GormAssignmentRepository) CreateIfAbsent(
	ctx context.Context, assignment *dispatch.Assignment,
) (bool, error) {
	if err := assignment.Validate(); err != nil {
		return false, err
	}

	dto := fromDomain(assignment)
	result := r.db.WithContext(ctx).Exec(`
		INSERT INTO assignments (id, order_id, driver_id, tenant_id, status, assigned_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (order_id) DO UPDATE SET
			id          = excluded.id,
			driver_id   = excluded.driver_id,
			status      = excluded.status,
			assigned_at = excluded.assigned_at
		WHERE assignments.status <> ?
	`, dto.ID, dto.OrderID, dto.DriverID, dto.TenantID, dto.Status, dto.AssignedAt,
		string(dispatch.AssignmentStatusActive))
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// Update persists state changes of an existing assignment.
func (r *GormAssignmentRepository) Update(ctx context.Context, assignment *dispatch.Assignment) error {
	if err := assignment.Validate(); err != nil {
		return err
	}

	dto := fromDomain(assignment)
	result := r.db.WithContext(ctx).
		Model(&AssignmentDTO{}).
		Where("id = ?", dto.ID).
		Updates(map[string]any{"status": dto.Status, "driver_id": dto.DriverID})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetActiveByOrder retrieves the active assignment for an order, or nil when
// the order is unassigned.
func (r *GormAssignmentRepository) GetActiveByOrder(
	ctx context.Context, orderID kernel.UUID,
) (*dispatch.Assignment, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto AssignmentDTO
	err := r.db.WithContext(ctx).
		First(&dto, "order_id = ? AND status = ?", orderID.Bytes(), string(dispatch.AssignmentStatusActive)).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetActiveByDriver retrieves all orders a driver currently holds.
func (r *GormAssignmentRepository) GetActiveByDriver(
	ctx context.Context, driverID kernel.UUID,
) ([]*dispatch.Assignment, error) {
	if err := driverID.Validate(); err != nil {
		return nil, err
	}

	var dtos []AssignmentDTO
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND status = ?", driverID.Bytes(), string(dispatch.AssignmentStatusActive)).
		Order("assigned_at").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	assignments := make([]*dispatch.Assignment, 0, len(dtos))
	for _, dto := range dtos {
		assignment, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	return assignments, nil
}
