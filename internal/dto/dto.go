// Package dto converts entities to and from their wire representation: a
// flat, string-keyed property map. Relationship fields travel as foreign-key
// id strings (single reference) or id-string arrays (multi reference); a
// relationship key absent from an update map means "this relationship no
// longer exists", while absent scalar keys leave the target untouched.
package dto

// DTO is the flat map form of one entity, used as the remote document format.
type DTO map[string]any

// Reserved keys every DTO carries.
const (
	KeyEntityType = "entityType"
	KeyUID        = "uid"
	KeyOwnerID    = "ownerId"
)
