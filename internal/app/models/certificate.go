package models

import "time"

// Certificate type values offered by the admin form. Anything else,
// including a missing value, is grouped under TypeOther in searches.
const (
	TypeCourse    = "Curso"
	TypeWorkshop  = "Taller"
	TypeProgram   = "Programa"
	TypeDiploma   = "Diplomado"
	TypeInduction = "Inducción"
	TypeOther     = "Otros"
)

// KnownTypes is the fixed certificate type set.
var KnownTypes = []string{TypeCourse, TypeWorkshop, TypeProgram, TypeDiploma, TypeInduction}

// IsKnownType reports whether t belongs to the fixed type set.
func IsKnownType(t string) bool {
	for _, k := range KnownTypes {
		if t == k {
			return true
		}
	}
	return false
}

// Certificate is a stored certificate record. FileRef and ID are immutable
// after creation; CreatedAt is assigned by the database.
type Certificate struct {
	ID         int64
	HolderName string // nombre
	DocumentID string // dni
	FileRef    string // archivo, stored file name
	Type       *string
	Code       *string // globally unique among non-empty codes
	Title      *string // certificado_nombre
	Duration   *string
	IssueDate  *time.Time
	ExpiryDate *time.Time
	CreatedAt  time.Time
}
