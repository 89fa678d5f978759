package domain

import "errors"

// Ошибки, которые use case'ы возвращают наружу. REST-слой сопоставляет их с HTTP-кодами.
var (
	ErrInvalidPayload         = errors.New("invalid payload")
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrNoValidRecords         = errors.New("no valid listings found in payload")

	ErrUnauthorized      = errors.New("authentication required")
	ErrForbidden         = errors.New("forbidden")
	ErrOwnershipConflict = errors.New("listing belongs to a different dealer")

	ErrListingNotFound     = errors.New("listing not found")
	ErrDealerNotFound      = errors.New("dealer not found")
	ErrSavedSearchNotFound = errors.New("saved search not found")
	ErrVehicleNotFound     = errors.New("no data for this VIN")
	ErrDealerExists        = errors.New("a dealer with that name or email already exists")
)
