// Package domain defines the core domain types and interfaces.
//
// This package contains the wire-level sample types plus the cross-cutting
// PoseSource contract. No implementation code - just contracts. Prevents
// circular imports by keeping interfaces on the consumer side.
package domain
