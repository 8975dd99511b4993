package billing

import "errors"

var (
	// ErrInvalidPeriod is returned when the bill month is outside 1-12.
	ErrInvalidPeriod = errors.New("billing: invalid period")
	// ErrNegativeConsumption is returned when a new index implies negative usage.
	ErrNegativeConsumption = errors.New("billing: negative consumption")
	// ErrDuplicateRecord is returned when create is called on an existing key.
	ErrDuplicateRecord = errors.New("billing: record already exists")
	// ErrRecordNotFound is returned when amend or read targets a missing key.
	ErrRecordNotFound = errors.New("billing: record not found")
	// ErrNotLatestRecord is returned when amend targets a reading that is no
	// longer the customer's most recent one. Amending an older reading would
	// let the stored index sequence decrease.
	ErrNotLatestRecord = errors.New("billing: only the latest reading can be amended")
	// ErrUnknownCounty is returned when the county is not in the serial table.
	ErrUnknownCounty = errors.New("billing: unknown county")
	// ErrNilRecord is returned when persisting a nil record.
	ErrNilRecord = errors.New("billing: nil record")
)
