package commands

import (
	"errors"
	"time"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/pkg/guard"
)

var (
	ErrRecordLocationCommandIsNotConstructed = errors.New(
		"RecordLocationCommand must be created via NewRecordLocationCommand constructor",
	)
	ErrRecordedAtIsRequired = errors.New("recordedAt is required")
)

// RecordLocationCommand represents one location ping from a driver's app.
type RecordLocationCommand struct { //nolint:recvcheck //using for validation
	tenantID   kernel.UUID
	driverID   kernel.UUID
	location   kernel.GeoPoint
	recordedAt time.Time

	guard guard.ConstructorGuard
}

// NewRecordLocationCommand creates a location ping command.
func NewRecordLocationCommand(
	tenantID, driverID kernel.UUID,
	location kernel.GeoPoint,
	recordedAt time.Time,
) (RecordLocationCommand, error) {
	cmd := RecordLocationCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setTenantID(tenantID),
		cmd.setDriverID(driverID),
		cmd.setLocation(location),
		cmd.setRecordedAt(recordedAt),
	); err != nil {
		return RecordLocationCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RecordLocationCommand) Validate() error {
	return c.guard.Validate(ErrRecordLocationCommandIsNotConstructed)
}

// TenantID returns the tenant the driver works for.
func (c RecordLocationCommand) TenantID() kernel.UUID { return c.tenantID }

// DriverID returns the pinging driver.
func (c RecordLocationCommand) DriverID() kernel.UUID { return c.driverID }

// Location returns the reported position.
func (c RecordLocationCommand) Location() kernel.GeoPoint { return c.location }

// RecordedAt returns the client-side capture time of the ping.
func (c RecordLocationCommand) RecordedAt() time.Time { return c.recordedAt }

func (c *RecordLocationCommand) setTenantID(tenantID kernel.UUID) error {
	if err := tenantID.Validate(); err != nil {
		return err
	}
	c.tenantID = tenantID
	return nil
}

func (c *RecordLocationCommand) setDriverID(driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}
	c.driverID = driverID
	return nil
}

func (c *RecordLocationCommand) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}
	c.location = location
	return nil
}

func (c *RecordLocationCommand) setRecordedAt(recordedAt time.Time) error {
	if recordedAt.IsZero() {
		return ErrRecordedAtIsRequired
	}
	c.recordedAt = recordedAt
	return nil
}
