package services

import (
	"errors"
	"fmt"

	"github.com/kendall-kelly/laundry-shop-api/pricing"
)

// ValidationError is returned when caller input is missing, malformed or out
// of range. Nothing has been written when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError is returned when a write, delete or direct lookup names an
// unknown order or customer.
type NotFoundError struct {
	Resource string
	Key      string
	Value    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with %s %s not found", e.Resource, e.Key, e.Value)
}

// StoreError wraps a persistence failure. The services never retry.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	// errors raised by our own callbacks inside a transaction pass through
	var ve *ValidationError
	var nf *NotFoundError
	if errors.As(err, &ve) || errors.As(err, &nf) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// fromPricing converts a pricing engine refusal into a ValidationError.
func fromPricing(err error) error {
	var perr *pricing.Error
	if errors.As(err, &perr) {
		return &ValidationError{Field: perr.Field, Message: perr.Message}
	}
	return err
}

func orderNotFound(id string) error {
	return &NotFoundError{Resource: "order", Key: "id", Value: id}
}

func customerNotFound(key string) error {
	return &NotFoundError{Resource: "customer", Key: "key", Value: key}
}
