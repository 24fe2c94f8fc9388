package domain

import "errors"

var ErrNotFound = errors.New("reading not found")

type Reading struct {
	ID    string
	Value float64
}

type ReadingRepository interface {
	FindByID(id string) (*Reading, error)
	Save(r *Reading) error
}

func Validate(r *Reading) error {
	if r.ID == "" {
		return errors.New("reading id is empty")
	}
	return nil
}
