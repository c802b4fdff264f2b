// Package extraction implements spec §4.10's daily extraction: a 24h
// window pull across all of a manager's active connections, handed to
// an external summarization provider for action-item extraction.
package extraction

import (
	"context"
	"time"

	messagerepo "github.com/bridgeos/bridgeos/internal/data/repos/message"
	berrors "github.com/bridgeos/bridgeos/internal/pkg/errors"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
	"github.com/bridgeos/bridgeos/internal/platform/summarizer"
	"github.com/bridgeos/bridgeos/internal/services/connection"
)

const window = 24 * time.Hour

type Service struct {
	messages   messagerepo.Repo
	connection *connection.Service
	summarizer summarizer.Summarizer
	log        *logger.Logger
}

func NewService(messages messagerepo.Repo, connectionSvc *connection.Service, sum summarizer.Summarizer, log *logger.Logger) *Service {
	return &Service{messages: messages, connection: connectionSvc, summarizer: sum, log: log.With("service", "extraction.Service")}
}

// Extract implements spec §4.10. Empty input produces the empty-list
// response without calling the provider.
func (s *Service) Extract(ctx context.Context, managerID int64, targetLanguage string) ([]string, error) {
	conns, err := s.connection.ListActiveForManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	if len(conns) == 0 {
		return []string{}, nil
	}

	connectionIDs := make([]int64, 0, len(conns))
	for _, c := range conns {
		connectionIDs = append(connectionIDs, c.ConnectionID)
	}

	since := time.Now().UTC().Add(-window)
	rows, err := s.messages.ForConnectionsWindow(ctx, nil, connectionIDs, since)
	if err != nil {
		return nil, berrors.MapWrite("extraction.Extract", err)
	}
	if len(rows) == 0 {
		return []string{}, nil
	}

	lines := make([]summarizer.MessageLine, 0, len(rows))
	for _, m := range rows {
		lines = append(lines, summarizer.MessageLine{Text: m.OriginalText})
	}

	bullets, err := s.summarizer.Extract(ctx, lines, targetLanguage)
	if err != nil {
		return nil, berrors.Wrap(berrors.CodeTranslationFailed, "extraction.Extract", err)
	}
	return bullets, nil
}
