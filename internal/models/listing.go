package models

import "fmt"

// ListingKind identifies which marketplace side a listing belongs to
type ListingKind string

const (
	ListingKindProperty ListingKind = "property"
	ListingKindVehicle  ListingKind = "vehicle"
)

// ListingStatus is the lifecycle status shared by both listing kinds
type ListingStatus string

const (
	StatusDraft    ListingStatus = "DRAFT"
	StatusActive   ListingStatus = "ACTIVE"
	StatusSold     ListingStatus = "SOLD"
	StatusRented   ListingStatus = "RENTED"
	StatusInactive ListingStatus = "INACTIVE"
)

// allowedTransitions maps each status to the statuses it may move to.
// The table is identical for properties and vehicles.
var allowedTransitions = map[ListingStatus][]ListingStatus{
	StatusDraft:    {StatusActive, StatusInactive},
	StatusActive:   {StatusDraft, StatusSold, StatusRented, StatusInactive},
	StatusSold:     {StatusInactive},
	StatusRented:   {StatusInactive},
	StatusInactive: {StatusActive, StatusDraft},
}

// IsValid reports whether s is one of the known listing statuses
func (s ListingStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusSold, StatusRented, StatusInactive:
		return true
	}
	return false
}

// CanTransition reports whether the from -> to status change is allowed
func CanTransition(from, to ListingStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError is returned when a status change is not in the
// transition table. It names both states so the caller can see what was
// attempted.
type InvalidTransitionError struct {
	From ListingStatus
	To   ListingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("status transition from %s to %s is not allowed", e.From, e.To)
}

// CheckTransition validates a status change against the transition table
func CheckTransition(from, to ListingStatus) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// Listing is the common view over Property and Vehicle. Code that works on
// either kind (status transitions, favorites, search indexing, moderation)
// dispatches through this interface instead of comparing kind strings.
type Listing interface {
	ListingID() uint
	Kind() ListingKind
	Owner() uint
	CurrentStatus() ListingStatus
	CurrentVersion() int
}

// ListingRef points at exactly one listing of either kind. The zero value is
// invalid; exactly one of the two IDs must be set.
type ListingRef struct {
	PropertyID *uint `json:"property_id,omitempty"`
	VehicleID  *uint `json:"vehicle_id,omitempty"`
}

// RefTo builds a ListingRef for an existing listing
func RefTo(l Listing) ListingRef {
	id := l.ListingID()
	switch l.Kind() {
	case ListingKindVehicle:
		return ListingRef{VehicleID: &id}
	default:
		return ListingRef{PropertyID: &id}
	}
}

// Validate checks the exactly-one invariant
func (r ListingRef) Validate() error {
	if r.PropertyID == nil && r.VehicleID == nil {
		return Validationf("listing reference required: property_id or vehicle_id must be set")
	}
	if r.PropertyID != nil && r.VehicleID != nil {
		return Validationf("ambiguous listing reference: property_id and vehicle_id are mutually exclusive")
	}
	return nil
}

// Kind returns the listing kind the reference points at. Validate must have
// passed before calling.
func (r ListingRef) Kind() ListingKind {
	if r.VehicleID != nil {
		return ListingKindVehicle
	}
	return ListingKindProperty
}

// ID returns the referenced listing ID
func (r ListingRef) ID() uint {
	if r.VehicleID != nil {
		return *r.VehicleID
	}
	if r.PropertyID != nil {
		return *r.PropertyID
	}
	return 0
}
