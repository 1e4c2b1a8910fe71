package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewID returns a fresh 24-character hexadecimal identifier.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// CanonicalID trims and lower-cases a 24-hex identifier.
// ok is false when s is not exactly 24 hexadecimal characters.
func CanonicalID(s string) (id string, ok bool) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return oid.Hex(), true
}

// SameID reports whether a and b denote the same identifier.
func SameID(a, b string) bool {
	ca, okA := CanonicalID(a)
	cb, okB := CanonicalID(b)
	return okA && okB && ca == cb
}
