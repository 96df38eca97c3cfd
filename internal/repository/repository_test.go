package repository

import (
	"context"
	"testing"
	"time"

	"LifeStats/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	// :memory: 每个连接一个库，测试里固定单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func seedBathroom(t *testing.T, repo BathroomRepository, events ...*model.BathroomEvent) {
	t.Helper()
	for _, ev := range events {
		require.NoError(t, repo.Create(context.Background(), ev))
	}
}

func TestBathroomRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewBathroomRepository(setupTestDB(t))

	ev := &model.BathroomEvent{EventType: model.EventPee, Timestamp: "2024-01-01T08:00", Location: strPtr("home")}
	require.NoError(t, repo.Create(ctx, ev))
	assert.Equal(t, uint64(1), ev.ID)

	got, err := repo.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "home", *got.Location)

	updated := &model.BathroomEvent{ID: ev.ID, EventType: model.EventPoo, Timestamp: "2024-01-02T09:00", Location: strPtr("work")}
	require.NoError(t, repo.Update(ctx, updated))
	got, err = repo.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventPoo, got.EventType)
	assert.Equal(t, "work", *got.Location)
	assert.Equal(t, ev.CreatedAt.Unix(), got.CreatedAt.Unix())

	err = repo.Update(ctx, &model.BathroomEvent{ID: 99, EventType: model.EventPee, Timestamp: "2024-01-01T00:00"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(ctx, ev.ID))
	assert.ErrorIs(t, repo.Delete(ctx, ev.ID), gorm.ErrRecordNotFound)
	_, err = repo.GetByID(ctx, ev.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBathroomRepositoryIDsNotReused(t *testing.T) {
	ctx := context.Background()
	repo := NewBathroomRepository(setupTestDB(t))

	first := &model.BathroomEvent{EventType: model.EventPee, Timestamp: "2024-01-01T08:00"}
	seedBathroom(t, repo, first)
	require.NoError(t, repo.Delete(ctx, first.ID))

	second := &model.BathroomEvent{EventType: model.EventPee, Timestamp: "2024-01-01T09:00"}
	seedBathroom(t, repo, second)
	assert.Greater(t, second.ID, first.ID)
}

func TestBathroomRepositoryListHidesSensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewBathroomRepository(setupTestDB(t))
	seedBathroom(t, repo,
		&model.BathroomEvent{EventType: model.EventPee, Timestamp: "2024-01-01T08:00"},
		&model.BathroomEvent{EventType: model.EventCum, Timestamp: "2024-01-03T08:00", InVR: intPtr(0)},
		&model.BathroomEvent{EventType: model.EventPoo, Timestamp: "2024-01-02T08:00"},
	)

	visible, err := repo.List(ctx, BathroomFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, model.EventPoo, visible[0].EventType, "newest timestamp first")
	assert.Equal(t, model.EventPee, visible[1].EventType)

	all, err := repo.List(ctx, BathroomFilter{IncludeSensitive: true})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, model.EventCum, all[0].EventType)
}

func TestListOrdersMixedTimestampLayouts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	bathroom := NewBathroomRepository(db)
	dental := NewDentalRepository(db)

	// 按字符串比较 "2024-01-01T08:00" > "2024-01-01 09:00:00"，按时间则相反
	seedBathroom(t, bathroom,
		&model.BathroomEvent{EventType: model.EventPee, Timestamp: "2024-01-01 09:00:00", Location: strPtr("later")},
		&model.BathroomEvent{EventType: model.EventPee, Timestamp: "2024-01-01T08:00", Location: strPtr("earlier")},
		&model.BathroomEvent{EventType: model.EventPee, Timestamp: "2024-01-01T09:30:00+02:00", Location: strPtr("earliest")},
	)
	list, err := bathroom.List(ctx, BathroomFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "later", *list[0].Location)
	assert.Equal(t, "earlier", *list[1].Location)
	assert.Equal(t, "earliest", *list[2].Location)
	require.NotNil(t, list[0].OccurredAt)

	for _, ts := range []string{"2024-01-01 21:00", "2024-01-01T20:30"} {
		require.NoError(t, dental.Create(ctx, &model.DentalEvent{Timestamp: ts}))
	}
	dentalList, err := dental.List(ctx)
	require.NoError(t, err)
	require.Len(t, dentalList, 2)
	assert.Equal(t, "2024-01-01 21:00", dentalList[0].Timestamp)
}

func TestBathroomRepositoryUpdateRecomputesOccurredAt(t *testing.T) {
	ctx := context.Background()
	repo := NewBathroomRepository(setupTestDB(t))
	ev := &model.BathroomEvent{EventType: model.EventPee, Timestamp: "2024-01-01T08:00"}
	seedBathroom(t, repo, ev)

	require.NoError(t, repo.Update(ctx, &model.BathroomEvent{ID: ev.ID, EventType: model.EventPee, Timestamp: "2024-02-01 07:15"}))
	got, err := repo.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OccurredAt)
	assert.True(t, got.OccurredAt.Equal(time.Date(2024, 2, 1, 7, 15, 0, 0, time.UTC)))
}

func TestDentalRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewDentalRepository(setupTestDB(t))

	ev := &model.DentalEvent{Timestamp: "2024-01-01T20:00", UsedFlosser: 1}
	require.NoError(t, repo.Create(ctx, ev))

	require.NoError(t, repo.Update(ctx, &model.DentalEvent{ID: ev.ID, Timestamp: "2024-01-01T21:00"}))
	got, err := repo.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.UsedFlosser)
	assert.Equal(t, "2024-01-01T21:00", got.Timestamp)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, ev.ID))
	assert.ErrorIs(t, repo.Delete(ctx, ev.ID), gorm.ErrRecordNotFound)
}

func TestStatsRepositoryEmptyStore(t *testing.T) {
	ctx := context.Background()
	repo := NewStatsRepository(setupTestDB(t))

	byType, err := repo.CountByType(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, byType)

	timeline, err := repo.Timeline(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, timeline)

	daily, err := repo.DentalDaily(ctx)
	require.NoError(t, err)
	assert.Empty(t, daily)

	top, err := repo.TopNames(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, top)

	total, err := repo.CountBathroom(ctx, true)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestStatsRepositoryAggregations(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	bathroom := NewBathroomRepository(db)
	dental := NewDentalRepository(db)
	repo := NewStatsRepository(db)

	seedBathroom(t, bathroom,
		&model.BathroomEvent{EventType: model.EventPee, Timestamp: "2024-01-02T08:00", Location: strPtr("home")},
		&model.BathroomEvent{EventType: model.EventPee, Timestamp: "2024-01-01T08:00", Location: strPtr("home")},
		&model.BathroomEvent{EventType: model.EventPee, Timestamp: "2024-01-01T12:30:00Z", Location: strPtr("work")},
		&model.BathroomEvent{EventType: model.EventPoo, Timestamp: "2024-01-01T09:00", Location: strPtr("home")},
		&model.BathroomEvent{EventType: model.EventCum, Timestamp: "2024-01-01T23:00", NormalizedWho: strPtr("Bob"), Person1: strPtr("bob")},
		&model.BathroomEvent{EventType: model.EventCum, Timestamp: "2024-01-02T23:00", NormalizedWho: strPtr("Alice"), Person1: strPtr("Alice"), NormalizedPerson2: strPtr("Bob")},
		&model.BathroomEvent{EventType: model.EventCum, Timestamp: "2024-01-03T23:00", NormalizedWho: strPtr("Alice"), Person1: strPtr("Alice")},
	)
	for _, ev := range []*model.DentalEvent{
		{Timestamp: "2024-01-01T08:00", UsedFlosser: 0},
		{Timestamp: "2024-01-01T20:00", UsedFlosser: 1},
		{Timestamp: "2024-01-02T20:00", UsedFlosser: 0},
	} {
		require.NoError(t, dental.Create(ctx, ev))
	}

	byType, err := repo.CountByType(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []TypeCount{{EventType: model.EventPee, Count: 3}, {EventType: model.EventPoo, Count: 1}}, byType)

	byType, err = repo.CountByType(ctx, true)
	require.NoError(t, err)
	assert.Len(t, byType, 3)

	timeline, err := repo.Timeline(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []TimelineRow{
		{EventType: model.EventPee, Date: "2024-01-01", Count: 2},
		{EventType: model.EventPoo, Date: "2024-01-01", Count: 1},
		{EventType: model.EventPee, Date: "2024-01-02", Count: 1},
	}, timeline)

	locations, err := repo.CountByLocationAndType(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []LocationCount{
		{EventType: model.EventPee, Location: "home", Count: 2},
		{EventType: model.EventPee, Location: "work", Count: 1},
		{EventType: model.EventPoo, Location: "home", Count: 1},
	}, locations)

	// 人名统计不受敏感类别筛选影响
	people, err := repo.CountByPerson(ctx)
	require.NoError(t, err)
	assert.Equal(t, []PersonCount{{Person: "Alice", Count: 2}, {Person: "Bob", Count: 1}}, people)

	top, err := repo.TopNames(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []PersonCount{{Person: "Alice", Count: 2}, {Person: "Bob", Count: 2}}, top)

	daily, err := repo.DentalDaily(ctx)
	require.NoError(t, err)
	assert.Equal(t, []DentalDailyRow{
		{Date: "2024-01-01", BrushCount: 2, FlossCount: 1},
		{Date: "2024-01-02", BrushCount: 1, FlossCount: 0},
	}, daily)

	recent, err := repo.RecentBathroom(ctx, false, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, uint64(4), recent[0].ID)
	assert.Equal(t, uint64(3), recent[1].ID)

	recentDental, err := repo.RecentDental(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recentDental, 3)

	visible, err := repo.CountBathroom(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int64(4), visible)
	all, err := repo.CountBathroom(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int64(7), all)
}

func TestAliasRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAliasRepository(setupTestDB(t))

	require.NoError(t, repo.Merge(ctx, map[string]string{"bob": "Robert", "liz": "Elizabeth"}))
	require.NoError(t, repo.Merge(ctx, map[string]string{"bob": "Bobby"}))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"bob": "Bobby", "liz": "Elizabeth"}, got)

	require.NoError(t, repo.ReplaceAll(ctx, map[string]string{"al": "Alice"}))
	got, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"al": "Alice"}, got)
}

func TestImportRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewImportRepository(db)

	batch := &model.ImportBatch{Kind: model.ImportKindDental, Source: model.ImportSourceAPI, Count: 2}
	require.NoError(t, repo.SaveDentalBatch(ctx, []*model.DentalEvent{
		{Timestamp: "2024-01-01T08:00"},
		{Timestamp: "2024-01-01T20:00", UsedFlosser: 1},
	}, batch))
	assert.NotEmpty(t, batch.BatchUUID)

	var count int64
	require.NoError(t, db.Model(&model.DentalEvent{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	batches, err := repo.ListBatches(ctx, 0)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, 2, batches[0].Count)
}
