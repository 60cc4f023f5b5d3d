package models

import "time"

// Link represents a shortened link and its associated metadata.
type Link struct {
	// ID is the unique identifier for the link record.
	ID int64
	// Code is the short code used to address the link. It is either generated
	// or supplied by the caller as a custom alias. Codes are case-sensitive
	// and unique across all records.
	Code string
	// CustomAlias holds the caller-chosen alias when one was supplied,
	// otherwise it is empty. Aliases share a single namespace with generated codes.
	CustomAlias string
	// LongURL is the original, full-length URL that the code resolves to.
	LongURL string
	// ExpiresAt is the moment after which the link stops resolving.
	// A nil value means the link never expires.
	ExpiresAt *time.Time
	// PasswordHash is the hex-encoded SHA-256 digest of the access password.
	// It is empty for unprotected links.
	PasswordHash string
	// IsPrivate marks the link as private. Stored for schema parity; the
	// resolution path does not act on it.
	IsPrivate bool
	// ClickCount tracks the number of successful resolutions of the link.
	ClickCount int64
	// CreatedAt is the timestamp indicating when the link was created.
	CreatedAt time.Time
}
