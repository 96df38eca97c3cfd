package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"LifeStats/internal/alias"
	"LifeStats/internal/repository"

	"github.com/sirupsen/logrus"
)

// AliasService 别名表的加载与替换。数据库为准，文件仅作导入来源与镜像
type AliasService struct {
	// mu 串行化 Replace，保证数据库、内存表与文件三者一致
	mu       sync.Mutex
	repo     repository.AliasRepository
	registry *alias.Registry
	file     string
	logger   *logrus.Logger
}

func NewAliasService(repo repository.AliasRepository, registry *alias.Registry, file string, logger *logrus.Logger) *AliasService {
	return &AliasService{repo: repo, registry: registry, file: file, logger: logger}
}

// Load 启动时调用一次：别名文件（若存在）合并进数据库，再从数据库填充内存表
func (s *AliasService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != "" {
		data, err := os.ReadFile(s.file)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			s.logger.WithField("file", s.file).Info("别名文件不存在，跳过")
		case err != nil:
			return fmt.Errorf("读取别名文件失败: %w", err)
		default:
			mapping, err := alias.ParseMapping(data)
			if err != nil {
				return err
			}
			if err := s.repo.Merge(ctx, mapping); err != nil {
				return fmt.Errorf("写入别名失败: %w", err)
			}
			s.logger.WithFields(logrus.Fields{"file": s.file, "count": len(mapping)}).Info("别名文件已合并")
		}
	}

	mapping, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("加载别名失败: %w", err)
	}
	s.registry.Replace(mapping)
	s.logger.WithField("count", s.registry.Len()).Info("别名表已加载")
	return nil
}

// Mappings 当前别名表（alias -> canonical）
func (s *AliasService) Mappings() map[string]string {
	return s.registry.Snapshot()
}

// Resolve 名字的规范形式
func (s *AliasService) Resolve(name string) string {
	return s.registry.Resolve(name)
}

// Replace 整体替换别名表：先写数据库，成功后切换内存表，再镜像到文件。
// 已写入的事件不会被重新规范化
func (s *AliasService) Replace(ctx context.Context, data []byte) (map[string]string, error) {
	mapping, err := alias.ParseMapping(data)
	if err != nil {
		return nil, &ValidationError{Field: "mappings", Reason: err.Error()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.ReplaceAll(ctx, mapping); err != nil {
		return nil, &TransientIOError{Op: "replace aliases", Err: err}
	}
	s.registry.Replace(mapping)

	snapshot := s.registry.Snapshot()
	if err := s.writeFile(snapshot); err != nil {
		s.logger.WithError(err).WithField("file", s.file).Warn("别名文件写入失败，数据库已更新")
	}
	s.logger.WithField("count", len(snapshot)).Info("别名表已替换")
	return snapshot, nil
}

func (s *AliasService) writeFile(mapping map[string]string) error {
	if s.file == "" {
		return nil
	}
	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.file); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.file + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.file)
}
