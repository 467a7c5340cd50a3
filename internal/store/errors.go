package store

import (
	domainerrors "github.com/productlabel/productlabel-server/internal/errors"
)

// Sentinel errors. They are coded domain errors, so errors.Is matches any
// error with the same code (e.g. ErrLabelNotFound matches ErrNotFound).
var (
	ErrNotFound          = domainerrors.NotFound("resource not found")
	ErrAlreadyExists     = domainerrors.AlreadyExists("resource already exists")
	ErrInvalidInput      = domainerrors.Validation("invalid input")
	ErrLabelNotFound     = domainerrors.NotFound("product label not found")
	ErrProductNotFound   = domainerrors.NotFound("product not found")
	ErrAttributeNotFound = domainerrors.NotFound("attribute not found")
	ErrStoreNotFound     = domainerrors.NotFound("store not found")
)

// LabelConflict builds the error returned when a label would share an
// attribute/option pair with another label in an overlapping store scope.
func LabelConflict(attributeID, optionID, storeID int64) error {
	return domainerrors.AlreadyExistsf(
		"Label for attribute %d, option %d, and store %d already exist.",
		attributeID, optionID, storeID,
	).WithDetails(map[string]int64{
		"attribute_id": attributeID,
		"option_id":    optionID,
		"store_id":     storeID,
	})
}
