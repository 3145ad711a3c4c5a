package vfs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/WebOS/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/WebOS/internal/shared/types"
	"github.com/GriffinCanCode/WebOS/internal/shared/utils"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// KeyPrefix namespaces file records inside a shared backend
const KeyPrefix = "vfs:"

// DefaultQuota is reported when no quota is configured
const DefaultQuota int64 = 5 * 1024 * 1024

// StorageDescription is shown on the storage permission prompt
const StorageDescription = "Store and read files in browser storage"

// ErrEmptyPath is returned for operations without a path
var ErrEmptyPath = errors.New("file path is required")

// Gate authorizes access to a permission channel. The permission broker
// satisfies it.
type Gate interface {
	Require(ctx context.Context, ch types.Channel, description string) error
}

// Option configures a Store
type Option func(*Store)

// WithQuota sets the quota reported by Usage
func WithQuota(bytes int64) Option {
	return func(s *Store) {
		s.quota = bytes
	}
}

// WithLogger sets the store logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records operations on the given collector
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(s *Store) {
		s.metrics = metrics
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is the permission-gated file store
type Store struct {
	backend Backend
	gate    Gate
	quota   int64
	logger  *zap.Logger
	metrics *monitoring.Metrics
	now     func() time.Time

	// serializes read-modify-write sequences
	writeMu sync.Mutex

	initMu      sync.Mutex
	initialized bool
	initErr     error
}

// NewStore creates a store over backend, gated by gate
func NewStore(backend Backend, gate Gate, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		gate:    gate,
		quota:   DefaultQuota,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ensure runs the storage permission check once per store. A decision,
// granted or denied, is kept; an abandoned wait is not.
func (s *Store) ensure(ctx context.Context) error {
	s.initMu.Lock()
	if s.initialized {
		err := s.initErr
		s.initMu.Unlock()
		return err
	}
	s.initMu.Unlock()

	err := s.gate.Require(ctx, types.ChannelStorage, StorageDescription)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	s.initMu.Lock()
	defer s.initMu.Unlock()
	if !s.initialized {
		s.initialized = true
		s.initErr = err
		if err != nil {
			s.logger.Warn("File store disabled", zap.Error(err))
		}
	}
	return s.initErr
}

// WriteFile creates or overwrites the file at path
func (s *Store) WriteFile(ctx context.Context, path, content string) (file types.StoredFile, err error) {
	defer func() { s.metrics.RecordFileOp("write", err) }()

	if err := validatePath(path); err != nil {
		return types.StoredFile{}, err
	}
	if err := utils.ValidateContentSize(content); err != nil {
		return types.StoredFile{}, err
	}
	if err := s.ensure(ctx); err != nil {
		return types.StoredFile{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.write(ctx, path, content)
}

// write stores a record, keeping CreatedAt of an existing file. Called with writeMu held.
func (s *Store) write(ctx context.Context, path, content string) (types.StoredFile, error) {
	now := s.now()
	file := types.StoredFile{
		Path:      path,
		Content:   content,
		Size:      len(content),
		Type:      mimetype.Detect([]byte(content)).String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if existing, ok, err := s.load(ctx, path); err != nil {
		return types.StoredFile{}, err
	} else if ok {
		file.CreatedAt = existing.CreatedAt
	}

	data, err := sonic.Marshal(file)
	if err != nil {
		return types.StoredFile{}, fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := s.backend.Set(ctx, KeyPrefix+path, data); err != nil {
		return types.StoredFile{}, err
	}
	return file, nil
}

// ReadFile returns the file at path; ok is false when it does not exist
func (s *Store) ReadFile(ctx context.Context, path string) (file types.StoredFile, ok bool, err error) {
	defer func() { s.metrics.RecordFileOp("read", err) }()

	if err := validatePath(path); err != nil {
		return types.StoredFile{}, false, err
	}
	if err := s.ensure(ctx); err != nil {
		return types.StoredFile{}, false, err
	}
	return s.load(ctx, path)
}

// DeleteFile removes the file at path and reports whether it existed
func (s *Store) DeleteFile(ctx context.Context, path string) (existed bool, err error) {
	defer func() { s.metrics.RecordFileOp("delete", err) }()

	if err := validatePath(path); err != nil {
		return false, err
	}
	if err := s.ensure(ctx); err != nil {
		return false, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, existed, err = s.backend.Get(ctx, KeyPrefix+path)
	if err != nil || !existed {
		return false, err
	}
	return true, s.backend.Remove(ctx, KeyPrefix+path)
}

// ListFiles returns files matching pattern, newest update first. An empty
// pattern matches every file.
func (s *Store) ListFiles(ctx context.Context, pattern string) (files []types.StoredFile, err error) {
	defer func() { s.metrics.RecordFileOp("list", err) }()

	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}

	files, err = s.all(ctx)
	if err != nil {
		return nil, err
	}

	if pattern != "" {
		matched := files[:0]
		for _, f := range files {
			if ok, _ := doublestar.Match(pattern, f.Path); ok {
				matched = append(matched, f)
			}
		}
		files = matched
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].UpdatedAt.Equal(files[j].UpdatedAt) {
			return files[i].Path < files[j].Path
		}
		return files[i].UpdatedAt.After(files[j].UpdatedAt)
	})
	return files, nil
}

// RenameFile copies oldPath to newPath and deletes oldPath. It returns nil
// when oldPath does not exist.
func (s *Store) RenameFile(ctx context.Context, oldPath, newPath string) (file *types.StoredFile, err error) {
	defer func() { s.metrics.RecordFileOp("rename", err) }()

	if err := validatePath(oldPath); err != nil {
		return nil, err
	}
	if err := validatePath(newPath); err != nil {
		return nil, err
	}
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	src, ok, err := s.load(ctx, oldPath)
	if err != nil || !ok {
		return nil, err
	}
	if oldPath == newPath {
		return &src, nil
	}

	moved, err := s.write(ctx, newPath, src.Content)
	if err != nil {
		return nil, err
	}
	if err := s.backend.Remove(ctx, KeyPrefix+oldPath); err != nil {
		return nil, err
	}
	return &moved, nil
}

// Usage sums stored bytes and reports the configured quota
func (s *Store) Usage(ctx context.Context) (usage types.StorageUsage, err error) {
	defer func() { s.metrics.RecordFileOp("usage", err) }()

	if err := s.ensure(ctx); err != nil {
		return types.StorageUsage{}, err
	}

	files, err := s.all(ctx)
	if err != nil {
		return types.StorageUsage{}, err
	}

	usage.QuotaBytes = s.quota
	usage.Files = len(files)
	for _, f := range files {
		usage.UsedBytes += int64(f.Size)
	}
	return usage, nil
}

// Clear removes every file and returns how many were removed
func (s *Store) Clear(ctx context.Context) (removed int, err error) {
	defer func() { s.metrics.RecordFileOp("clear", err) }()

	if err := s.ensure(ctx); err != nil {
		return 0, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	keys, err := s.fileKeys(ctx)
	if err != nil {
		return 0, err
	}
	for _, k := range keys {
		if err := s.backend.Remove(ctx, k); err != nil {
			return removed, err
		}
		removed++
	}

	s.logger.Info("File store cleared", zap.Int("removed", removed))
	return removed, nil
}

func (s *Store) load(ctx context.Context, path string) (types.StoredFile, bool, error) {
	data, ok, err := s.backend.Get(ctx, KeyPrefix+path)
	if err != nil || !ok {
		return types.StoredFile{}, false, err
	}

	var file types.StoredFile
	if err := sonic.Unmarshal(data, &file); err != nil {
		return types.StoredFile{}, false, fmt.Errorf("corrupt record for %s: %w", path, err)
	}
	return file, true, nil
}

func (s *Store) all(ctx context.Context) ([]types.StoredFile, error) {
	keys, err := s.fileKeys(ctx)
	if err != nil {
		return nil, err
	}

	files := make([]types.StoredFile, 0, len(keys))
	for _, k := range keys {
		file, ok, err := s.load(ctx, strings.TrimPrefix(k, KeyPrefix))
		if err != nil {
			s.logger.Warn("Skipping unreadable file record", zap.String("key", k), zap.Error(err))
			continue
		}
		if ok {
			files = append(files, file)
		}
	}
	return files, nil
}

func (s *Store) fileKeys(ctx context.Context) ([]string, error) {
	keys, err := s.backend.Keys(ctx)
	if err != nil {
		return nil, err
	}

	out := keys[:0]
	for _, k := range keys {
		if strings.HasPrefix(k, KeyPrefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrEmptyPath
	}
	return utils.ValidatePath(path)
}
