package repo

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("duplicate record")
)

type GormRepo struct {
	DB *gorm.DB
}
