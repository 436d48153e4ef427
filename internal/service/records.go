package service

import (
	"context"

	"github.com/cloo-solutions/shopdesk/internal/domain"
)

// RecordService reads back customer action records
type RecordService struct {
	repo RecordRepository
}

// NewRecordService creates a new RecordService instance
func NewRecordService(repo RecordRepository) *RecordService {
	return &RecordService{repo: repo}
}

// List returns every record of a kind, newest first
func (s *RecordService) List(ctx context.Context, kind domain.RecordKind) ([]*domain.ActionRecord, error) {
	if _, err := domain.ParseRecordKind(string(kind)); err != nil {
		return nil, err
	}
	records, err := s.repo.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*domain.ActionRecord{}
	}
	return records, nil
}
