package application

import (
	"fmt"

	"example.com/gateway/domain"
)

type ReadingService struct {
	repo domain.ReadingRepository
}

func NewReadingService(repo domain.ReadingRepository) *ReadingService {
	return &ReadingService{repo: repo}
}

func (s *ReadingService) Get(id string) (*domain.Reading, error) {
	r, err := s.repo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("fetching reading: %w", err)
	}
	return r, nil
}

func (s *ReadingService) Record(r *domain.Reading) error {
	if err := domain.Validate(r); err != nil {
		return err
	}
	return s.repo.Save(r)
}
