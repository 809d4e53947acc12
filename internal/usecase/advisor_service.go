package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/nba-advisor/internal/domain/analysis"
	"github.com/riskibarqy/nba-advisor/internal/platform/logging"
	"github.com/riskibarqy/nba-advisor/internal/report"
	"go.opentelemetry.io/otel/attribute"
)

// Completer is the text-generation collaborator: one prompt in, one completion out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Advice struct {
	Matchup        analysis.Matchup
	Analysis       analysis.GameAnalysis
	Report         string
	Prompt         string
	Recommendation string
}

type AdvisorService struct {
	analysis  *AnalysisService
	completer Completer
	logger    *logging.Logger
}

// NewAdvisorService builds the advisor. A nil completer limits Advise to the formatted report.
func NewAdvisorService(analysisService *AnalysisService, completer Completer, logger *logging.Logger) *AdvisorService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdvisorService{
		analysis:  analysisService,
		completer: completer,
		logger:    logger.Named("advisor"),
	}
}

// Advise resolves the matchup, analyses it and asks the completer for a recommendation.
// An unknown matchup is returned with Matchup.Found=false and no error.
func (s *AdvisorService) Advise(ctx context.Context, q MatchupQuery) (Advice, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdvisorService.Advise",
		attribute.String("team_a", q.TeamA),
		attribute.String("team_b", q.TeamB),
	)
	defer span.End()

	matchup, err := s.analysis.FindMatchup(ctx, q)
	if err != nil {
		return Advice{}, err
	}
	advice := Advice{Matchup: matchup}
	if !matchup.Found {
		s.logger.InfoContext(ctx, "no game for matchup", "team_a", q.TeamA, "team_b", q.TeamB, "date", q.Date)
		return advice, nil
	}

	result, err := s.analysis.BuildGameAnalysis(ctx, matchup.Game)
	if err != nil {
		return Advice{}, err
	}
	advice.Analysis = result
	advice.Report = report.FormatGameAnalysis(result)
	advice.Prompt = report.BuildPrompt(matchup, advice.Report)

	if s.completer == nil {
		return advice, nil
	}
	completion, err := s.completer.Complete(ctx, advice.Prompt)
	if err != nil {
		return advice, fmt.Errorf("complete advice for game=%d: %w", matchup.Game.ID, err)
	}
	advice.Recommendation = completion
	return advice, nil
}
