package order

import (
	"errors"
	"fmt"

	"foodcourt/internal/pkg/errs"
	"foodcourt/internal/pkg/guard"
)

// ErrExternalRefIsNotConstructed is returned when using an improperly initialized ExternalRef.
var ErrExternalRefIsNotConstructed = errors.New("ExternalRef must be created via NewExternalRef")

// Platform identifies an external ordering platform that pushes orders into
// the system through webhooks.
type Platform string

const (
	// PlatformIfood is the iFood marketplace.
	PlatformIfood Platform = "ifood"
	// PlatformRappi is the Rappi marketplace.
	PlatformRappi Platform = "rappi"
	// PlatformUberEats is the Uber Eats marketplace.
	PlatformUberEats Platform = "ubereats"
)

// Validate checks the platform against the known set.
func (p Platform) Validate() error {
	if p != PlatformIfood && p != PlatformRappi && p != PlatformUberEats {
		return errs.NewValueIsInvalidErrorWithCause(
			"platform", fmt.Errorf("%q is not a supported platform", string(p)))
	}
	return nil
}

// String implements fmt.Stringer.
func (p Platform) String() string {
	return string(p)
}

// ExternalRef identifies an order on its originating platform. The
// (platform, externalID) pair is unique across all orders and is the
// idempotency key of webhook ingestion.
type ExternalRef struct { //nolint:recvcheck //using for validation
	platform   Platform
	externalID string

	guard guard.ConstructorGuard
}

// NewExternalRef creates an external platform reference.
func NewExternalRef(platform Platform, externalID string) (ExternalRef, error) {
	ref := ExternalRef{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		ref.setPlatform(platform),
		ref.setExternalID(externalID),
	); err != nil {
		return ExternalRef{}, err
	}

	return ref, nil
}

// Platform returns the originating platform.
func (r ExternalRef) Platform() Platform { return r.platform }

// ExternalID returns the order's identifier on the originating platform.
func (r ExternalRef) ExternalID() string { return r.externalID }

// IsEqual reports whether two references point at the same platform order.
func (r ExternalRef) IsEqual(other ExternalRef) bool {
	return r.platform == other.platform && r.externalID == other.externalID
}

// Validate ensures the reference was created through NewExternalRef.
func (r ExternalRef) Validate() error {
	return r.guard.Validate(ErrExternalRefIsNotConstructed)
}

// String renders the reference as "platform/externalID".
func (r ExternalRef) String() string {
	return fmt.Sprintf("%s/%s", r.platform, r.externalID)
}

func (r *ExternalRef) setPlatform(platform Platform) error {
	if err := platform.Validate(); err != nil {
		return err
	}
	r.platform = platform
	return nil
}

func (r *ExternalRef) setExternalID(externalID string) error {
	if externalID == "" {
		return errs.NewValueIsRequiredError("externalID")
	}
	r.externalID = externalID
	return nil
}
