package models

import (
	"fmt"
)

// Sequence backs sequential reference generation, mirroring 'ir.sequence'.
type Sequence struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	Code       string `gorm:"uniqueIndex;not null" json:"code"`
	Prefix     string `json:"prefix"`
	Padding    int    `gorm:"default:5" json:"padding"`
	NextNumber int64  `gorm:"default:1" json:"next_number"`
}

func (Sequence) TableName() string { return "ir_sequence" }

// Sequence codes used by the engine.
const SequenceWeighing = "truck.weighing"

// Format renders number n with the sequence's prefix and zero padding.
func (s *Sequence) Format(n int64) string {
	return fmt.Sprintf("%s%0*d", s.Prefix, s.Padding, n)
}
