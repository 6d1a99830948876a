package services

import (
	"context"
	stderrors "errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/vytor/pgnarchive/internal/chesscom"
	"github.com/vytor/pgnarchive/internal/errors"
	"github.com/vytor/pgnarchive/internal/logger"
	"github.com/vytor/pgnarchive/internal/models"
)

const maxArchiveMonths = 12

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,40}$`)

// ArchiveService imports games from a player's Chess.com monthly archives
type ArchiveService interface {
	ImportPlayer(ctx context.Context, username string, months int) ([]models.ImportSummary, error)
}

type archiveService struct {
	client   chesscom.ArchiveFetcher
	importer ImportService
}

// NewArchiveService creates a new ArchiveService
func NewArchiveService(client chesscom.ArchiveFetcher, importer ImportService) ArchiveService {
	return &archiveService{client: client, importer: importer}
}

// ImportPlayer imports the most recent months archives of username, one
// import per month. Games played under other rules are left out.
func (s *archiveService) ImportPlayer(ctx context.Context, username string, months int) ([]models.ImportSummary, error) {
	if !usernameRe.MatchString(username) {
		return nil, errors.NewValidationError("username", "must be 1-40 letters, digits, '_' or '-'")
	}
	if months == 0 {
		months = 1
	}
	if months < 0 || months > maxArchiveMonths {
		return nil, errors.NewValidationError("months", "must be between 1 and 12")
	}

	log := logger.FromContext(ctx).WithPrefix("archive").WithField("username", username)
	archives, err := s.client.FetchArchives(ctx, username)
	if err != nil {
		var statusErr *chesscom.StatusError
		if stderrors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return nil, errors.NewNotFoundError("player", username)
		}
		log.Error("failed to fetch archives: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if len(archives) > months {
		archives = archives[len(archives)-months:]
	}
	log.Info("importing %d monthly archives", len(archives))

	var summaries []models.ImportSummary
	for _, archiveURL := range archives {
		games, err := s.client.FetchMonthly(ctx, archiveURL)
		if err != nil {
			log.Error("failed to fetch archive %s: %v", archiveURL, err)
			return summaries, errors.NewInternalError(err)
		}

		var sb strings.Builder
		skipped := 0
		for _, mg := range games {
			if !chesscom.IsStandard(mg) {
				skipped++
				continue
			}
			sb.WriteString(chesscom.NormalizePGN(mg))
			sb.WriteString("\n\n")
		}
		if skipped > 0 {
			log.Debug("left out %d games with other rules from %s", skipped, archiveURL)
		}
		if sb.Len() == 0 {
			continue
		}

		summary, err := s.importer.ImportText(ctx, archiveSource(username, archiveURL), sb.String())
		if summary != nil {
			summaries = append(summaries, *summary)
		}
		if err != nil {
			return summaries, err
		}
	}
	return summaries, nil
}

// archiveSource names an import after the archive month, "chess.com:ann/2024/01".
func archiveSource(username, archiveURL string) string {
	parts := strings.Split(strings.TrimRight(archiveURL, "/"), "/")
	month := archiveURL
	if len(parts) >= 2 {
		month = parts[len(parts)-2] + "/" + parts[len(parts)-1]
	}
	return "chess.com:" + strings.ToLower(username) + "/" + month
}
