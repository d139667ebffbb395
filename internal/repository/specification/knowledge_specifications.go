package specification

import (
	"gorm.io/gorm"
)

// ByProblemHash matches passages stored for the same (normalized) problem text.
type ByProblemHash struct {
	Hash string
}

func (s ByProblemHash) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("problem_hash = ?", s.Hash)
}

type ByOrigin struct {
	Origin string
}

func (s ByOrigin) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("origin = ?", s.Origin)
}
