package service

import (
	"context"
	"strings"

	"LifeStats/internal/alias"
	"LifeStats/internal/model"
	"LifeStats/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	KindBathroom = "bathroom"
	KindDental   = "dental"
)

// MutationObserver 记录写操作结果（指标），可为 nil
type MutationObserver interface {
	ObserveMutation(kind, op string, err error)
}

// BathroomInput 创建/更新 bathroom 事件的请求体；更新时同样整体替换
type BathroomInput struct {
	EventType string  `json:"event_type"`
	Timestamp string  `json:"timestamp"`
	Location  *string `json:"location"`
	InVR      *int    `json:"in_vr"`
	Person1   *string `json:"person1"`
	Person2   *string `json:"person2"`
}

// LegacyEventInput 旧版前端 POST /api/event 的请求体
type LegacyEventInput struct {
	Type      string  `json:"type"`
	Timestamp string  `json:"timestamp"`
	Location  *string `json:"location"`
	Who       *string `json:"who"`
}

// ToBathroomInput type -> event_type，who -> person1
func (in LegacyEventInput) ToBathroomInput() BathroomInput {
	return BathroomInput{
		EventType: in.Type,
		Timestamp: in.Timestamp,
		Location:  in.Location,
		Person1:   in.Who,
	}
}

// DentalInput 创建/更新 dental 事件的请求体
type DentalInput struct {
	Timestamp   string `json:"timestamp"`
	UsedFlosser *int   `json:"used_flosser"`
}

// ValidateTimestamp 校验时间字符串，返回去掉空白后的原值
func ValidateTimestamp(ts string) (string, error) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return "", &ValidationError{Field: "timestamp", Reason: "is required"}
	}
	if _, ok := model.ParseEventTime(ts); ok {
		return ts, nil
	}
	return "", &ValidationError{Field: "timestamp", Reason: "must be an ISO-8601 date-time"}
}

func validateFlag(field string, v *int) error {
	if v != nil && *v != 0 && *v != 1 {
		return &ValidationError{Field: field, Reason: "must be 0 or 1"}
	}
	return nil
}

// optionalString 去掉空白，空串视为未填
func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// EventService 事件存储：bathroom/dental 的增删改查与常用人名
type EventService struct {
	bathroom      repository.BathroomRepository
	dental        repository.DentalRepository
	stats         repository.StatsRepository
	aliases       *alias.Registry
	observer      MutationObserver
	logger        *logrus.Logger
	topNamesLimit int
}

// NewEventService 创建 EventService
func NewEventService(
	bathroom repository.BathroomRepository,
	dental repository.DentalRepository,
	stats repository.StatsRepository,
	aliases *alias.Registry,
	observer MutationObserver,
	logger *logrus.Logger,
	topNamesLimit int,
) *EventService {
	if topNamesLimit <= 0 {
		topNamesLimit = 3
	}
	return &EventService{
		bathroom:      bathroom,
		dental:        dental,
		stats:         stats,
		aliases:       aliases,
		observer:      observer,
		logger:        logger,
		topNamesLimit: topNamesLimit,
	}
}

func (s *EventService) observe(kind, op string, err error) {
	if s.observer != nil {
		s.observer.ObserveMutation(kind, op, err)
	}
}

func (s *EventService) normalizeName(name *string) *string {
	if name == nil {
		return nil
	}
	v := s.aliases.Resolve(*name)
	return &v
}

// buildBathroomEvent 校验并转换请求，创建与更新共用同一套规则
func (s *EventService) buildBathroomEvent(in BathroomInput) (*model.BathroomEvent, error) {
	eventType := model.EventType(strings.ToLower(strings.TrimSpace(in.EventType)))
	if eventType == "" {
		return nil, &ValidationError{Field: "event_type", Reason: "is required"}
	}
	if !eventType.Valid() {
		return nil, &ValidationError{Field: "event_type", Reason: "must be one of pee, poo, cum"}
	}
	ts, err := ValidateTimestamp(in.Timestamp)
	if err != nil {
		return nil, err
	}
	if err := validateFlag("in_vr", in.InVR); err != nil {
		return nil, err
	}

	ev := &model.BathroomEvent{
		EventType: eventType,
		Timestamp: ts,
		Location:  optionalString(in.Location),
		Person1:   optionalString(in.Person1),
		Person2:   optionalString(in.Person2),
	}
	// in_vr 只对 cum 有意义
	if eventType == model.EventCum {
		vr := 0
		if in.InVR != nil {
			vr = *in.InVR
		}
		ev.InVR = &vr
	}
	ev.NormalizedWho = s.normalizeName(ev.Person1)
	ev.NormalizedPerson2 = s.normalizeName(ev.Person2)
	return ev, nil
}

func buildDentalEvent(in DentalInput) (*model.DentalEvent, error) {
	ts, err := ValidateTimestamp(in.Timestamp)
	if err != nil {
		return nil, err
	}
	if err := validateFlag("used_flosser", in.UsedFlosser); err != nil {
		return nil, err
	}
	ev := &model.DentalEvent{Timestamp: ts}
	if in.UsedFlosser != nil {
		ev.UsedFlosser = *in.UsedFlosser
	}
	return ev, nil
}

// CreateBathroomEvent 校验后写入，返回带 id 的记录
func (s *EventService) CreateBathroomEvent(ctx context.Context, in BathroomInput) (*model.BathroomEvent, error) {
	ev, err := s.buildBathroomEvent(in)
	if err != nil {
		s.observe(KindBathroom, "create", err)
		return nil, err
	}
	err = storageError("create bathroom event", KindBathroom, 0, s.bathroom.Create(ctx, ev))
	s.observe(KindBathroom, "create", err)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"id": ev.ID, "event_type": ev.EventType}).Debug("bathroom 事件已创建")
	return ev, nil
}

// UpdateBathroomEvent 整体替换可变字段，未提供的字段按创建规则取默认值
func (s *EventService) UpdateBathroomEvent(ctx context.Context, id uint64, in BathroomInput) (*model.BathroomEvent, error) {
	ev, err := s.buildBathroomEvent(in)
	if err != nil {
		s.observe(KindBathroom, "update", err)
		return nil, err
	}
	ev.ID = id
	err = storageError("update bathroom event", KindBathroom, id, s.bathroom.Update(ctx, ev))
	s.observe(KindBathroom, "update", err)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// DeleteBathroomEvent 物理删除；id 不存在返回 NotFoundError
func (s *EventService) DeleteBathroomEvent(ctx context.Context, id uint64) error {
	err := storageError("delete bathroom event", KindBathroom, id, s.bathroom.Delete(ctx, id))
	s.observe(KindBathroom, "delete", err)
	return err
}

func (s *EventService) GetBathroomEvent(ctx context.Context, id uint64) (*model.BathroomEvent, error) {
	ev, err := s.bathroom.GetByID(ctx, id)
	if err != nil {
		return nil, storageError("get bathroom event", KindBathroom, id, err)
	}
	return ev, nil
}

// ListBathroomEvents 默认不包含敏感类别
func (s *EventService) ListBathroomEvents(ctx context.Context, filter repository.BathroomFilter) ([]*model.BathroomEvent, error) {
	list, err := s.bathroom.List(ctx, filter)
	if err != nil {
		return nil, storageError("list bathroom events", KindBathroom, 0, err)
	}
	if list == nil {
		list = []*model.BathroomEvent{}
	}
	return list, nil
}

func (s *EventService) CreateDentalEvent(ctx context.Context, in DentalInput) (*model.DentalEvent, error) {
	ev, err := buildDentalEvent(in)
	if err != nil {
		s.observe(KindDental, "create", err)
		return nil, err
	}
	err = storageError("create dental event", KindDental, 0, s.dental.Create(ctx, ev))
	s.observe(KindDental, "create", err)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *EventService) UpdateDentalEvent(ctx context.Context, id uint64, in DentalInput) (*model.DentalEvent, error) {
	ev, err := buildDentalEvent(in)
	if err != nil {
		s.observe(KindDental, "update", err)
		return nil, err
	}
	ev.ID = id
	err = storageError("update dental event", KindDental, id, s.dental.Update(ctx, ev))
	s.observe(KindDental, "update", err)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *EventService) DeleteDentalEvent(ctx context.Context, id uint64) error {
	err := storageError("delete dental event", KindDental, id, s.dental.Delete(ctx, id))
	s.observe(KindDental, "delete", err)
	return err
}

func (s *EventService) GetDentalEvent(ctx context.Context, id uint64) (*model.DentalEvent, error) {
	ev, err := s.dental.GetByID(ctx, id)
	if err != nil {
		return nil, storageError("get dental event", KindDental, id, err)
	}
	return ev, nil
}

func (s *EventService) ListDentalEvents(ctx context.Context) ([]*model.DentalEvent, error) {
	list, err := s.dental.List(ctx)
	if err != nil {
		return nil, storageError("list dental events", KindDental, 0, err)
	}
	if list == nil {
		list = []*model.DentalEvent{}
	}
	return list, nil
}

// TopNames cum 事件中最常出现的人名，次数相同按名字升序；limit<=0 使用默认值
func (s *EventService) TopNames(ctx context.Context, limit int) ([]repository.PersonCount, error) {
	if limit <= 0 {
		limit = s.topNamesLimit
	}
	rows, err := s.stats.TopNames(ctx, limit)
	if err != nil {
		return nil, storageError("top names", KindBathroom, 0, err)
	}
	if rows == nil {
		rows = []repository.PersonCount{}
	}
	return rows, nil
}
