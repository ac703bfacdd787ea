package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

var ErrEmptyBatch = errors.New("result batch is empty")

// ResultService handles cracked result business logic
type ResultService struct {
	results domain.ResultRepository
	tasks   domain.TaskRepository
}

// NewResultService creates a new ResultService
func NewResultService(results domain.ResultRepository, tasks domain.TaskRepository) *ResultService {
	return &ResultService{
		results: results,
		tasks:   tasks,
	}
}

// List retrieves results matching the filter
func (s *ResultService) List(ctx context.Context, filter domain.ResultFilter) ([]*domain.Result, int, error) {
	results, total, err := s.results.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list results: %w", err)
	}

	return results, total, nil
}

// GetByID retrieves a single result
func (s *ResultService) GetByID(ctx context.Context, id int64) (*domain.Result, error) {
	res, err := s.results.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	return res, nil
}

// Submit stores cracked hashes reported for a task
func (s *ResultService) Submit(ctx context.Context, batch domain.ResultBatch) (int, error) {
	cracked := batch.Results[:0:0]
	for _, c := range batch.Results {
		if strings.TrimSpace(c.Hash) == "" {
			continue
		}
		cracked = append(cracked, c)
	}
	if len(cracked) == 0 {
		return 0, ErrEmptyBatch
	}
	batch.Results = cracked

	if _, err := s.tasks.GetByID(ctx, batch.TaskID); err != nil {
		return 0, fmt.Errorf("failed to get task: %w", err)
	}

	n, err := s.results.CreateBatch(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("failed to store results: %w", err)
	}

	return n, nil
}
