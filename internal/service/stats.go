package service

import (
	"context"

	"LifeStats/internal/model"
	"LifeStats/internal/repository"

	"github.com/sirupsen/logrus"
)

// StatsLimits 统计视图的条数上限
type StatsLimits struct {
	RecentBathroom int
	RecentDental   int
	Leaderboard    int // 0 表示不截断
}

// RecentEvents 最近创建的两类事件
type RecentEvents struct {
	Bathroom []*model.BathroomEvent `json:"recent_bathroom"`
	Dental   []*model.DentalEvent   `json:"recent_dental"`
}

// OverallCounts 总数；toothbrush_count 为旧版页面使用的同义字段
type OverallCounts struct {
	TotalEvents     int64 `json:"total_events"`
	DentalCount     int64 `json:"dental_count"`
	ToothbrushCount int64 `json:"toothbrush_count"`
}

// StatsSnapshot /api/stats 返回的完整文档
type StatsSnapshot struct {
	BathroomStats  []repository.TimelineRow    `json:"bathroom_stats"`
	LocationStats  []repository.LocationCount  `json:"location_stats"`
	PersonStats    []LeaderboardEntry          `json:"person_stats"`
	DentalStats    []repository.DentalDailyRow `json:"dental_stats"`
	RecentBathroom []*model.BathroomEvent      `json:"recent_bathroom"`
	RecentDental   []*model.DentalEvent        `json:"recent_dental"`
	EventsByType   map[model.EventType]int64   `json:"events_by_type"`
	EventsByPerson map[string]int64            `json:"events_by_person"`
	OverallCounts
}

// StatsService 聚合引擎：只读，每次调用完整重算，不持有状态
type StatsService struct {
	repo   repository.StatsRepository
	limits StatsLimits
	logger *logrus.Logger
}

func NewStatsService(repo repository.StatsRepository, limits StatsLimits, logger *logrus.Logger) *StatsService {
	if limits.RecentBathroom <= 0 {
		limits.RecentBathroom = 10
	}
	if limits.RecentDental <= 0 {
		limits.RecentDental = 10
	}
	if limits.Leaderboard < 0 {
		limits.Leaderboard = 0
	}
	return &StatsService{repo: repo, limits: limits, logger: logger}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// StatsByType event_type -> 次数
func (s *StatsService) StatsByType(ctx context.Context, includeSensitive bool) (map[model.EventType]int64, error) {
	rows, err := s.repo.CountByType(ctx, includeSensitive)
	if err != nil {
		return nil, storageError("stats by type", KindBathroom, 0, err)
	}
	out := make(map[model.EventType]int64, len(rows))
	for _, row := range rows {
		out[row.EventType] = row.Count
	}
	return out, nil
}

// StatsByPerson 规范名（缺省时取 person1）-> 次数，只统计带人名的事件。
// 人名几乎只出现在 cum 事件上，因此不受 include_cum 影响
func (s *StatsService) StatsByPerson(ctx context.Context) (map[string]int64, error) {
	rows, err := s.personCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Person] = row.Count
	}
	return out, nil
}

func (s *StatsService) personCounts(ctx context.Context) ([]repository.PersonCount, error) {
	rows, err := s.repo.CountByPerson(ctx)
	if err != nil {
		return nil, storageError("stats by person", KindBathroom, 0, err)
	}
	return rows, nil
}

// Leaderboard 人名排行榜；limit<=0 使用配置值
func (s *StatsService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := s.personCounts(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.limits.Leaderboard
	}
	return BuildLeaderboard(rows, limit), nil
}

func (s *StatsService) StatsByLocationAndType(ctx context.Context, includeSensitive bool) ([]repository.LocationCount, error) {
	rows, err := s.repo.CountByLocationAndType(ctx, includeSensitive)
	if err != nil {
		return nil, storageError("stats by location", KindBathroom, 0, err)
	}
	return orEmpty(rows), nil
}

// TimelineStats 每个 (类型, 日期) 一行，按日期升序
func (s *StatsService) TimelineStats(ctx context.Context, includeSensitive bool) ([]repository.TimelineRow, error) {
	rows, err := s.repo.Timeline(ctx, includeSensitive)
	if err != nil {
		return nil, storageError("timeline stats", KindBathroom, 0, err)
	}
	return orEmpty(rows), nil
}

// DentalDailyStats 每日刷牙次数与其中使用牙线的次数
func (s *StatsService) DentalDailyStats(ctx context.Context) ([]repository.DentalDailyRow, error) {
	rows, err := s.repo.DentalDaily(ctx)
	if err != nil {
		return nil, storageError("dental daily stats", KindDental, 0, err)
	}
	return orEmpty(rows), nil
}

// RecentEvents 按 id 倒序取最近的事件；limit<=0 使用配置值
func (s *StatsService) RecentEvents(ctx context.Context, includeSensitive bool, limitBathroom, limitDental int) (*RecentEvents, error) {
	if limitBathroom <= 0 {
		limitBathroom = s.limits.RecentBathroom
	}
	if limitDental <= 0 {
		limitDental = s.limits.RecentDental
	}
	bathroom, err := s.repo.RecentBathroom(ctx, includeSensitive, limitBathroom)
	if err != nil {
		return nil, storageError("recent bathroom events", KindBathroom, 0, err)
	}
	dental, err := s.repo.RecentDental(ctx, limitDental)
	if err != nil {
		return nil, storageError("recent dental events", KindDental, 0, err)
	}
	return &RecentEvents{Bathroom: orEmpty(bathroom), Dental: orEmpty(dental)}, nil
}

// OverallCounts includeSensitive=false 时 total_events 不含敏感类别
func (s *StatsService) OverallCounts(ctx context.Context, includeSensitive bool) (*OverallCounts, error) {
	total, err := s.repo.CountBathroom(ctx, includeSensitive)
	if err != nil {
		return nil, storageError("count bathroom events", KindBathroom, 0, err)
	}
	dental, err := s.repo.CountDental(ctx)
	if err != nil {
		return nil, storageError("count dental events", KindDental, 0, err)
	}
	return &OverallCounts{TotalEvents: total, DentalCount: dental, ToothbrushCount: dental}, nil
}

// Snapshot 组装 /api/stats 文档
func (s *StatsService) Snapshot(ctx context.Context, includeSensitive bool) (*StatsSnapshot, error) {
	timeline, err := s.TimelineStats(ctx, includeSensitive)
	if err != nil {
		return nil, err
	}
	locations, err := s.StatsByLocationAndType(ctx, includeSensitive)
	if err != nil {
		return nil, err
	}
	people, err := s.personCounts(ctx)
	if err != nil {
		return nil, err
	}
	dental, err := s.DentalDailyStats(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.RecentEvents(ctx, includeSensitive, 0, 0)
	if err != nil {
		return nil, err
	}
	byType, err := s.StatsByType(ctx, includeSensitive)
	if err != nil {
		return nil, err
	}
	counts, err := s.OverallCounts(ctx, includeSensitive)
	if err != nil {
		return nil, err
	}

	byPerson := make(map[string]int64, len(people))
	for _, p := range people {
		byPerson[p.Person] = p.Count
	}

	s.logger.WithFields(logrus.Fields{
		"include_cum":  includeSensitive,
		"total_events": counts.TotalEvents,
		"dental_count": counts.DentalCount,
	}).Debug("统计快照已生成")

	return &StatsSnapshot{
		BathroomStats:  timeline,
		LocationStats:  locations,
		PersonStats:    BuildLeaderboard(people, s.limits.Leaderboard),
		DentalStats:    dental,
		RecentBathroom: recent.Bathroom,
		RecentDental:   recent.Dental,
		EventsByType:   byType,
		EventsByPerson: byPerson,
		OverallCounts:  *counts,
	}, nil
}
