package chesscom

import "context"

// ArchiveFetcher lists and downloads a player's monthly game archives.
type ArchiveFetcher interface {
	FetchArchives(ctx context.Context, username string) ([]string, error)
	FetchMonthly(ctx context.Context, archiveURL string) ([]MonthlyGame, error)
}

var _ ArchiveFetcher = (*Client)(nil)
