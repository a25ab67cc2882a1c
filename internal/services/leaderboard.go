package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/calisthenics-backend/internal/data/repos"
	"github.com/yungbote/calisthenics-backend/internal/observability"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"github.com/yungbote/calisthenics-backend/internal/progression"
)

const (
	LeaderboardSourceRedis    = "redis"
	LeaderboardSourcePostgres = "postgres"

	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	// Weekly keys outlive their week so late readers still see final totals.
	leaderboardTTL = 15 * 24 * time.Hour
)

type LeaderboardEntry struct {
	Rank     int       `json:"rank"`
	UserID   uuid.UUID `json:"userId"`
	Name     string    `json:"name"`
	Level    int       `json:"level"`
	XP       int       `json:"xp"`
	Workouts int       `json:"workouts,omitempty"`
}

type Leaderboard struct {
	WeekStart string             `json:"weekStart"`
	Entries   []LeaderboardEntry `json:"entries"`
	// Me is the caller's own row; Rank is 0 when they have no xp this week.
	Me     *LeaderboardEntry `json:"me,omitempty"`
	Source string            `json:"source"`
}

type LeaderboardService interface {
	// RecordXP adds workout xp to the current week's board. It is a no-op
	// without redis; the postgres fallback reads workout history directly.
	RecordXP(ctx context.Context, userID uuid.UUID, xp int, at time.Time) error
	Weekly(ctx context.Context, limit int) (*Leaderboard, error)
}

type leaderboardService struct {
	db          *gorm.DB
	log         *logger.Logger
	rdb         goredis.UniversalClient
	userRepo    repos.UserRepo
	historyRepo repos.WorkoutHistoryRepo
	prefix      string
	cfg         ProgressionConfig
}

// NewLeaderboardService builds the weekly board. rdb may be nil.
func NewLeaderboardService(
	db *gorm.DB,
	log *logger.Logger,
	rdb goredis.UniversalClient,
	userRepo repos.UserRepo,
	historyRepo repos.WorkoutHistoryRepo,
	cfg ProgressionConfig,
) LeaderboardService {
	return &leaderboardService{
		db:          db,
		log:         log.With("service", "LeaderboardService"),
		rdb:         rdb,
		userRepo:    userRepo,
		historyRepo: historyRepo,
		prefix:      "cali:leaderboard:",
		cfg:         cfg,
	}
}

// isoWeekStart is Monday 00:00 of t's ISO week in loc.
func isoWeekStart(t time.Time, loc *time.Location) time.Time {
	d := progression.DayStart(t, loc)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func (s *leaderboardService) key(at time.Time) string {
	year, week := at.In(s.cfg.loc()).ISOWeek()
	return fmt.Sprintf("%s%04d-W%02d", s.prefix, year, week)
}

func (s *leaderboardService) RecordXP(ctx context.Context, userID uuid.UUID, xp int, at time.Time) error {
	if s.rdb == nil || xp <= 0 {
		return nil
	}
	key := s.key(at)
	pipe := s.rdb.TxPipeline()
	pipe.ZIncrBy(ctx, key, float64(xp), userID.String())
	pipe.Expire(ctx, key, leaderboardTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record leaderboard xp: %w", err)
	}
	return nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultLeaderboardLimit
	case limit > maxLeaderboardLimit:
		return maxLeaderboardLimit
	}
	return limit
}

func (s *leaderboardService) Weekly(ctx context.Context, limit int) (*Leaderboard, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit)
	now := s.cfg.now()
	board := &Leaderboard{WeekStart: isoWeekStart(now, s.cfg.loc()).Format("2006-01-02")}

	if s.rdb != nil {
		entries, me, err := s.fromRedis(ctx, userID, now, limit)
		if err == nil {
			board.Entries, board.Me, board.Source = entries, me, LeaderboardSourceRedis
			return board, s.decorate(ctx, board)
		}
		s.log.Warn("leaderboard redis read failed, using postgres", "error", err)
		observability.Current().ObserveLeaderboardFallback()
	}

	entries, me, err := s.fromPostgres(ctx, userID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("weekly leaderboard: %w", err)
	}
	board.Entries, board.Me, board.Source = entries, me, LeaderboardSourcePostgres
	return board, s.decorate(ctx, board)
}

func (s *leaderboardService) fromRedis(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]LeaderboardEntry, *LeaderboardEntry, error) {
	key := s.key(now)
	zs, err := s.rdb.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(zs))
	for i, z := range zs {
		member, _ := z.Member.(string)
		id, err := uuid.Parse(member)
		if err != nil {
			continue
		}
		entries = append(entries, LeaderboardEntry{Rank: i + 1, UserID: id, XP: int(z.Score)})
	}

	me := &LeaderboardEntry{UserID: userID}
	rank, err := s.rdb.ZRevRank(ctx, key, userID.String()).Result()
	switch {
	case errors.Is(err, goredis.Nil):
		return entries, me, nil
	case err != nil:
		return nil, nil, err
	}
	score, err := s.rdb.ZScore(ctx, key, userID.String()).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, nil, err
	}
	me.Rank = int(rank) + 1
	me.XP = int(score)
	return entries, me, nil
}

func (s *leaderboardService) fromPostgres(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]LeaderboardEntry, *LeaderboardEntry, error) {
	dbc := dbctx.Context{Ctx: ctx}
	since := isoWeekStart(now, s.cfg.loc())
	top, err := s.historyRepo.TopXPSince(dbc, since, limit)
	if err != nil {
		return nil, nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(top))
	me := &LeaderboardEntry{UserID: userID}
	for i, t := range top {
		e := LeaderboardEntry{Rank: i + 1, UserID: t.UserID, XP: t.XP, Workouts: t.Workouts}
		entries = append(entries, e)
		if t.UserID == userID {
			cp := e
			me = &cp
		}
	}
	if me.Rank == 0 {
		mine, err := s.historyRepo.XPSince(dbc, userID, since)
		if err != nil {
			return nil, nil, err
		}
		me.XP, me.Workouts = mine.XP, mine.Workouts
		// Outside the top rows the exact rank is not computed.
	}
	return entries, me, nil
}

// decorate fills names and levels from the user table.
func (s *leaderboardService) decorate(ctx context.Context, board *Leaderboard) error {
	ids := make([]uuid.UUID, 0, len(board.Entries)+1)
	for _, e := range board.Entries {
		ids = append(ids, e.UserID)
	}
	if board.Me != nil {
		ids = append(ids, board.Me.UserID)
	}
	users, err := s.userRepo.GetByIDs(dbctx.Context{Ctx: ctx}, ids)
	if err != nil {
		return fmt.Errorf("load leaderboard users: %w", err)
	}
	type who struct {
		name  string
		level int
	}
	byID := make(map[uuid.UUID]who, len(users))
	for _, u := range users {
		name := strings.TrimSpace(u.FirstName)
		if last := strings.TrimSpace(u.LastName); last != "" {
			name += " " + string([]rune(last)[:1]) + "."
		}
		byID[u.ID] = who{name: name, level: u.Level}
	}
	for i := range board.Entries {
		w := byID[board.Entries[i].UserID]
		board.Entries[i].Name, board.Entries[i].Level = w.name, w.level
	}
	if board.Me != nil {
		w := byID[board.Me.UserID]
		board.Me.Name, board.Me.Level = w.name, w.level
	}
	return nil
}
