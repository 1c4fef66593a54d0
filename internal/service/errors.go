package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrEngagementNotFound is returned when an engagement is not found
	ErrEngagementNotFound = errors.New("engagement not found")

	// ErrClientNotFound is returned when an engagement's client cannot be resolved
	ErrClientNotFound = errors.New("client not found")

	// ErrServiceNotFound is returned when a catalog service cannot be resolved
	ErrServiceNotFound = errors.New("service not found")

	// ErrCompanyNotFound is returned when no issuing company can be resolved
	ErrCompanyNotFound = errors.New("company not found")

	// ErrContactNotFound is returned when a send target contact does not exist
	ErrContactNotFound = errors.New("contact not found")

	// ErrInvalidTransition is returned when a lifecycle transition is not
	// allowed from the engagement's current state
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrNotAQuote is returned when a quote operation targets a non-devis engagement
	ErrNotAQuote = errors.New("engagement is not a quote")

	// ErrNotAService is returned when invoice generation targets a non-service engagement
	ErrNotAService = errors.New("engagement is not a service")

	// ErrQuoteAlreadySettled is returned when settling a quote that already
	// has a final commercial outcome
	ErrQuoteAlreadySettled = errors.New("quote already settled")

	// ErrRemoteDisabled is returned when a sync is requested without a
	// configured remote backend
	ErrRemoteDisabled = errors.New("remote backend not configured")

	// ErrSyncInFlight is returned when a reconciliation for the same
	// resource is already running; the request is skipped, not queued
	ErrSyncInFlight = errors.New("synchronization already in flight")
)
