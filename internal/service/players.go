package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/ingest/espn"
	"github.com/fortuna/courtside/internal/ingest/nba"
	"github.com/fortuna/courtside/internal/season"
)

// Dataset family TTLs, tuned to real-world volatility: current stats change
// every game night, injuries change daily, bios almost never change
// mid-season, and completed seasons are effectively immutable.
const (
	PlayersTTL      = time.Hour
	InjuryTTL       = 6 * time.Hour
	BioTTL          = 24 * time.Hour
	PriorPlayersTTL = 7 * 24 * time.Hour
)

// StatsSource is the primary provider of season stat lines.
type StatsSource interface {
	FetchSeasonStats(ctx context.Context, seasonID string) ([]nba.PlayerLine, error)
}

// InjurySource provides league-wide injury reports keyed by display name.
type InjurySource interface {
	FetchInjuries(ctx context.Context) (map[string]espn.InjuryReport, error)
}

// BioSource provides the roster-derived bio directory.
type BioSource interface {
	FetchBios(ctx context.Context) (espn.BioDirectory, error)
}

// PlayerService merges the three sources into the unified player set and
// owns one cache entry per dataset family. The injury and bio families are
// durable; the merged player results live in memory only.
type PlayerService struct {
	stats    StatsSource
	injuries InjurySource
	bios     BioSource

	playersCache *cache.Entry[PlayersResult]
	priorCache   *cache.Entry[PlayersResult]
	injuryCache  *cache.Entry[map[string]espn.InjuryReport]
	bioCache     *cache.Entry[espn.BioDirectory]
}

// NewPlayerService wires the sources to their cache families. store backs
// the durable families and may differ per deployment (file or Redis).
func NewPlayerService(stats StatsSource, injuries InjurySource, bios BioSource, store cache.SnapshotStore) *PlayerService {
	return &PlayerService{
		stats:        stats,
		injuries:     injuries,
		bios:         bios,
		playersCache: cache.NewEntry[PlayersResult](cache.FamilyPlayers, PlayersTTL, nil),
		priorCache:   cache.NewEntry[PlayersResult](cache.FamilyPlayersPrior, PriorPlayersTTL, nil),
		injuryCache:  cache.NewEntry[map[string]espn.InjuryReport](cache.FamilyInjuries, InjuryTTL, store),
		bioCache:     cache.NewEntry[espn.BioDirectory](cache.FamilyBios, BioTTL, store),
	}
}

// FetchPlayers returns the merged player set. An empty seasonID resolves to
// the current stats season; a caller-supplied identifier is used verbatim
// for historical lookups. A stats-provider failure returns an error and no
// partial list, since a partial stats pull is unusable for ranking.
func (s *PlayerService) FetchPlayers(ctx context.Context, seasonID string) (*PlayersResult, error) {
	window := season.Current()
	entry := s.playersCache

	if seasonID == "" {
		seasonID = window.StatsSeason
	} else if seasonID != window.StatsSeason {
		window = season.Historical(seasonID)
		entry = s.priorCache
	}

	// The season guard matters for the prior-season family: it is shared by
	// all historical lookups, so a cached result only counts when it is for
	// the requested season.
	if cached, ok := entry.Fresh(); ok && cached.StatsSeason == seasonID {
		return &cached, nil
	}

	result, err := s.buildPlayers(ctx, window)
	if err != nil {
		return nil, err
	}

	entry.Put(ctx, result)
	return &result, nil
}

// buildPlayers pulls stats, injuries, and bios, then joins them by name.
func (s *PlayerService) buildPlayers(ctx context.Context, window season.Window) (PlayersResult, error) {
	start := time.Now()

	lines, err := s.stats.FetchSeasonStats(ctx, window.StatsSeason)
	if err != nil {
		return PlayersResult{}, fmt.Errorf("season %s stats: %w", window.StatsSeason, err)
	}

	// Supplementary fetchers degrade to empty datasets instead of erroring,
	// so these only fail if a caller-supplied fetcher misbehaves.
	injuries, err := s.injuryCache.GetOrFetch(ctx, func(ctx context.Context) (map[string]espn.InjuryReport, error) {
		return s.injuries.FetchInjuries(ctx)
	})
	if err != nil {
		log.Printf("[players] injury lookup failed, defaulting to healthy: %v", err)
		injuries = map[string]espn.InjuryReport{}
	}

	bios, err := s.bioCache.GetOrFetch(ctx, func(ctx context.Context) (espn.BioDirectory, error) {
		return s.bios.FetchBios(ctx)
	})
	if err != nil {
		log.Printf("[players] bio lookup failed, defaulting to empty bios: %v", err)
		bios = espn.BioDirectory{}
	}

	players := make([]Player, 0, len(lines))
	for _, line := range lines {
		// Zero-game entries carry no ranking signal.
		if line.GamesPlayed <= 0 {
			continue
		}
		players = append(players, mergePlayer(line, injuries, bios))
	}

	log.Printf("[players] built %d players for %s in %.2fs",
		len(players), window.StatsSeason, time.Since(start).Seconds())

	return PlayersResult{
		Players:       players,
		TotalCount:    len(players),
		StatsSeason:   window.StatsSeason,
		CurrentSeason: window.CurrentSeason,
		Description:   window.Description,
	}, nil
}

// mergePlayer joins one stat line with its injury and bio records. Injuries
// join on the raw display name only; bios try the raw name first and fall
// back to the normalized index. Both joins are best-effort and default to
// healthy / empty attributes on a miss.
func mergePlayer(line nba.PlayerLine, injuries map[string]espn.InjuryReport, bios espn.BioDirectory) Player {
	p := Player{
		PlayerID:          line.PlayerID,
		Name:              line.Name,
		Team:              line.Team,
		GamesPlayed:       line.GamesPlayed,
		Minutes:           line.Minutes,
		Points:            line.Points,
		Rebounds:          line.Rebounds,
		Assists:           line.Assists,
		Steals:            line.Steals,
		Blocks:            line.Blocks,
		FieldGoalsMade:    line.FieldGoalsMade,
		ThreePointersMade: line.ThreePointersMade,
		FreeThrowsMade:    line.FreeThrowsMade,
		FieldGoalPct:      line.FieldGoalPct,
		ThreePointPct:     line.ThreePointPct,
		FreeThrowPct:      line.FreeThrowPct,
		Turnovers:         line.Turnovers,
		InjuryStatus:      "Healthy",
	}

	if report, ok := injuries[line.Name]; ok {
		p.InjuryStatus = report.Status
		p.InjuryType = &report.Injury
		p.InjuryTimeline = &report.Timeline
	}

	if bio, ok := bios.Lookup(line.Name); ok {
		p.Position = bio.Position
		p.Height = bio.Height
		p.Weight = bio.Weight
		p.Jersey = bio.Jersey
		p.Age = bio.Age
		p.BirthDate = bio.BirthDate
		p.BirthPlace = bio.BirthPlace
		p.College = bio.College
	}

	return p
}

// RefreshInjuries drops the injury family and refetches immediately.
// Returns the number of injury reports now cached.
func (s *PlayerService) RefreshInjuries(ctx context.Context) (int, error) {
	s.injuryCache.Expire(ctx)
	reports, err := s.injuryCache.GetOrFetch(ctx, func(ctx context.Context) (map[string]espn.InjuryReport, error) {
		return s.injuries.FetchInjuries(ctx)
	})
	if err != nil {
		return 0, err
	}
	return len(reports), nil
}

// RefreshBios drops the bio family and refetches immediately. Returns the
// number of players now indexed.
func (s *PlayerService) RefreshBios(ctx context.Context) (int, error) {
	s.bioCache.Expire(ctx)
	dir, err := s.bioCache.GetOrFetch(ctx, func(ctx context.Context) (espn.BioDirectory, error) {
		return s.bios.FetchBios(ctx)
	})
	if err != nil {
		return 0, err
	}
	return dir.Size(), nil
}

// CacheInfo reports freshness for every dataset family.
func (s *PlayerService) CacheInfo() []cache.Info {
	return []cache.Info{
		s.playersCache.Info(),
		s.priorCache.Info(),
		s.injuryCache.Info(),
		s.bioCache.Info(),
	}
}
