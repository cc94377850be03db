package service

import (
	"context"
	"time"

	"github.com/olegrjumin/imgscope/internal/analyzer"
	"github.com/olegrjumin/imgscope/internal/logging"
)

// Service provides the business logic layer for page image analysis
// It sits between the HTTP transport layer and the analyzer layer
type Service struct {
	analyzer *analyzer.Analyzer
	logger   *logging.Logger
	timeout  time.Duration
}

// New creates a new Service instance
func New(a *analyzer.Analyzer, logger *logging.Logger, timeout time.Duration) *Service {
	return &Service{
		analyzer: a,
		logger:   logger,
		timeout:  timeout,
	}
}

// AnalyzeURL runs a full image analysis of the given page
// This is the main entry point for the analysis use case
func (s *Service) AnalyzeURL(ctx context.Context, url string, timeout time.Duration) (*analyzer.AnalysisResult, error) {
	// Fall back to the service default when the caller gives no timeout
	if timeout <= 0 {
		timeout = s.timeout
	}

	// Create a context with timeout
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Log the analysis request
	s.logger.Info("Analyzing page", "url", url, "timeout", timeout)

	// Perform the analysis
	result, err := s.analyzer.Analyze(ctx, url)
	if err != nil {
		s.logger.Error("Analysis failed", "url", url, "error", err)
		return nil, err
	}

	// Log the result
	s.logger.Info("Analysis completed",
		"id", result.ID,
		"url", url,
		"images", len(result.Images),
		"total_bytes", result.TotalBytes,
		"potential_savings_bytes", result.PotentialSavingsBytes,
		"rendered", result.UsedRenderedCollection,
		"duration_ms", result.DurationMs,
	)

	return result, nil
}
