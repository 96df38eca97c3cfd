package service

import (
	"sort"
	"strconv"

	"LifeStats/internal/repository"
)

// rankLabels 前三名的固定标签
var rankLabels = []string{"🥇", "🥈", "🥉"}

// LeaderboardEntry 排行榜一行
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	Label  string `json:"label"`
	Person string `json:"person"`
	Count  int64  `json:"count"`
}

// RankLabel 1-based 名次对应的标签
func RankLabel(rank int) string {
	if rank >= 1 && rank <= len(rankLabels) {
		return rankLabels[rank-1]
	}
	return strconv.Itoa(rank)
}

// BuildLeaderboard 按次数降序、名字升序排名；名次按位置分配，同分不并列。limit<=0 不截断
func BuildLeaderboard(counts []repository.PersonCount, limit int) []LeaderboardEntry {
	sorted := make([]repository.PersonCount, 0, len(counts))
	for _, c := range counts {
		if c.Person == "" {
			continue
		}
		sorted = append(sorted, c)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].Person < sorted[j].Person
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]LeaderboardEntry, 0, len(sorted))
	for i, c := range sorted {
		out = append(out, LeaderboardEntry{
			Rank:   i + 1,
			Label:  RankLabel(i + 1),
			Person: c.Person,
			Count:  c.Count,
		})
	}
	return out
}
