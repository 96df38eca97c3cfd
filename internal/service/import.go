package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"LifeStats/internal/model"
	"LifeStats/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// formsTimestampLayout Google Forms 导出的时间格式，例如 3/14/2024 8:05:09
const formsTimestampLayout = "1/2/2006 15:04:05"

// FormsImportResult Google Forms CSV 导入结果
type FormsImportResult struct {
	Imported int                `json:"imported"`
	Skipped  int                `json:"skipped"` // 缺少时间/类型的行
	Invalid  int                `json:"invalid"` // 类型或时间非法的行
	Batch    *model.ImportBatch `json:"batch,omitempty"`
}

// ImportService 批量导入：先整体校验，再在一个事务内写入并记录 ImportBatch
type ImportService struct {
	repo     repository.ImportRepository
	events   *EventService
	observer MutationObserver
	logger   *logrus.Logger
}

func NewImportService(repo repository.ImportRepository, events *EventService, observer MutationObserver, logger *logrus.Logger) *ImportService {
	return &ImportService{repo: repo, events: events, observer: observer, logger: logger}
}

func (s *ImportService) observe(kind string, err error) {
	if s.observer != nil {
		s.observer.ObserveMutation(kind, "import", err)
	}
}

// rowError 给校验错误加上行号，整批拒绝
func rowError(i int, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return &ValidationError{Field: fmt.Sprintf("rows[%d].%s", i, ve.Field), Reason: ve.Reason}
	}
	return err
}

func newBatch(kind, source string, count int, rows interface{}) (*model.ImportBatch, error) {
	payload, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("序列化导入数据失败: %w", err)
	}
	return &model.ImportBatch{
		Kind:    kind,
		Source:  source,
		Count:   count,
		Payload: datatypes.JSON(payload),
	}, nil
}

// ImportBathroomEvents 任一行非法则整批拒绝（ValidationError 中带行号）
func (s *ImportService) ImportBathroomEvents(ctx context.Context, rows []BathroomInput, source string) (*model.ImportBatch, error) {
	batch, err := s.importBathroom(ctx, rows, source)
	s.observe(KindBathroom, err)
	return batch, err
}

func (s *ImportService) importBathroom(ctx context.Context, rows []BathroomInput, source string) (*model.ImportBatch, error) {
	if len(rows) == 0 {
		return nil, &ValidationError{Field: "rows", Reason: "must not be empty"}
	}
	events := make([]*model.BathroomEvent, 0, len(rows))
	for i, in := range rows {
		ev, err := s.events.buildBathroomEvent(in)
		if err != nil {
			return nil, rowError(i, err)
		}
		events = append(events, ev)
	}
	batch, err := newBatch(model.ImportKindBathroom, source, len(events), rows)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveBathroomBatch(ctx, events, batch); err != nil {
		return nil, &TransientIOError{Op: "import bathroom events", Err: err}
	}
	s.logger.WithFields(logrus.Fields{
		"batch_uuid": batch.BatchUUID,
		"source":     source,
		"count":      batch.Count,
	}).Info("bathroom 事件导入完成")
	return batch, nil
}

// ImportDentalEvents 同 ImportBathroomEvents
func (s *ImportService) ImportDentalEvents(ctx context.Context, rows []DentalInput, source string) (*model.ImportBatch, error) {
	batch, err := s.importDental(ctx, rows, source)
	s.observe(KindDental, err)
	return batch, err
}

func (s *ImportService) importDental(ctx context.Context, rows []DentalInput, source string) (*model.ImportBatch, error) {
	if len(rows) == 0 {
		return nil, &ValidationError{Field: "rows", Reason: "must not be empty"}
	}
	events := make([]*model.DentalEvent, 0, len(rows))
	for i, in := range rows {
		ev, err := buildDentalEvent(in)
		if err != nil {
			return nil, rowError(i, err)
		}
		events = append(events, ev)
	}
	batch, err := newBatch(model.ImportKindDental, source, len(events), rows)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveDentalBatch(ctx, events, batch); err != nil {
		return nil, &TransientIOError{Op: "import dental events", Err: err}
	}
	s.logger.WithFields(logrus.Fields{
		"batch_uuid": batch.BatchUUID,
		"source":     source,
		"count":      batch.Count,
	}).Info("dental 事件导入完成")
	return batch, nil
}

// ListBatches 最近的导入记录
func (s *ImportService) ListBatches(ctx context.Context, limit int) ([]*model.ImportBatch, error) {
	list, err := s.repo.ListBatches(ctx, limit)
	if err != nil {
		return nil, &TransientIOError{Op: "list import batches", Err: err}
	}
	return orEmpty(list), nil
}

// ConvertFormsTimestamp M/D/YYYY H:MM:SS -> YYYY-MM-DDTHH:MM:SS；无法识别时原样返回
func ConvertFormsTimestamp(ts string) string {
	ts = strings.TrimSpace(ts)
	t, err := time.Parse(formsTimestampLayout, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02T15:04:05")
}

// ParseFormsCSV 解析 Google Forms 导出（列：Timestamp, Event Type, Location, Who）。
// 缺少时间或类型的行计入 skipped
func ParseFormsCSV(r io.Reader) (rows []BathroomInput, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, 0, &ValidationError{Field: "csv", Reason: "missing header row"}
	}
	if err != nil {
		return nil, 0, &ValidationError{Field: "csv", Reason: err.Error()}
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{"Timestamp", "Event Type"} {
		if _, ok := cols[required]; !ok {
			return nil, 0, &ValidationError{Field: "csv", Reason: fmt.Sprintf("missing column %q", required)}
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, &ValidationError{Field: "csv", Reason: err.Error()}
		}
		ts := field(record, "Timestamp")
		eventType := field(record, "Event Type")
		if ts == "" || eventType == "" {
			skipped++
			continue
		}
		location := field(record, "Location")
		who := field(record, "Who")
		rows = append(rows, BathroomInput{
			EventType: eventType,
			Timestamp: ConvertFormsTimestamp(ts),
			Location:  &location,
			Person1:   &who,
		})
	}
	return rows, skipped, nil
}

// ImportFormsCSV 导入 Google Forms 导出；非法行跳过并计数，其余行整批写入
func (s *ImportService) ImportFormsCSV(ctx context.Context, r io.Reader) (*FormsImportResult, error) {
	rows, skipped, err := ParseFormsCSV(r)
	if err != nil {
		return nil, err
	}
	result := &FormsImportResult{Skipped: skipped}

	valid := make([]BathroomInput, 0, len(rows))
	for i, in := range rows {
		if _, err := s.events.buildBathroomEvent(in); err != nil {
			result.Invalid++
			s.logger.WithError(err).WithField("row", i).Debug("跳过非法行")
			continue
		}
		valid = append(valid, in)
	}
	if len(valid) == 0 {
		s.logger.WithFields(logrus.Fields{"skipped": result.Skipped, "invalid": result.Invalid}).Warn("没有可导入的行")
		return result, nil
	}

	batch, err := s.ImportBathroomEvents(ctx, valid, model.ImportSourceFormsCSV)
	if err != nil {
		return nil, err
	}
	result.Imported = batch.Count
	result.Batch = batch
	return result, nil
}
