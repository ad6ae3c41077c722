// Package mirror replicates produced PDFs to a MinIO bucket in the
// background. The local output directory stays the source of truth;
// replication is best-effort with a bounded queue and per-job retries.
package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/danyanovich/dwfx2pdf/internal/infra/config"
)

// Uploader is the slice of the MinIO client the workers need.
type Uploader interface {
	FPutObject(ctx context.Context, bucket, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type Mirror struct {
	uploader   Uploader
	bucket     string
	basePath   string
	queue      chan string
	workerNum  int
	maxRetries int

	// ctx outlives the caller's run context so Stop can drain the queue
	// after the process-level signal context is already canceled.
	ctx    context.Context
	cancel context.CancelFunc

	wg sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// New connects to MinIO and verifies the bucket exists.
func New(ctx context.Context, cfg config.Mirror) (*Mirror, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("empty MinIO endpoint")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("empty MinIO bucket")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return NewWithUploader(client, cfg), nil
}

func NewWithUploader(uploader Uploader, cfg config.Mirror) *Mirror {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}
	workerNum := cfg.Workers
	if workerNum <= 0 {
		workerNum = 1
	}

	basePath := strings.Trim(cfg.BasePath, "/")
	if basePath != "" {
		basePath += "/"
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mirror{
		uploader:   uploader,
		bucket:     cfg.Bucket,
		basePath:   basePath,
		queue:      make(chan string, queueSize),
		workerNum:  workerNum,
		maxRetries: cfg.MaxRetries,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (m *Mirror) Start(ctx context.Context) {
	m.wg.Add(m.workerNum)
	for i := 0; i < m.workerNum; i++ {
		go m.worker(i)
	}
	slog.Info("mirror started",
		slog.String("bucket", m.bucket),
		slog.Int("workers", m.workerNum),
	)
}

// Stop drains the queue and waits for the workers, bounded by ctx.
func (m *Mirror) Stop(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.queue)
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		m.cancel()
		return ctx.Err()
	case <-done:
	}

	m.cancel()
	slog.Info("mirror stopped")
	return nil
}

// Enqueue schedules a local file for replication. Returns false when the
// queue is full or the mirror is stopped; the caller keeps the file local
// either way.
func (m *Mirror) Enqueue(localPath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false
	}

	select {
	case m.queue <- localPath:
		return true
	default:
		return false
	}
}

func (m *Mirror) worker(id int) {
	defer m.wg.Done()

	for path := range m.queue {
		var err error
		for attempt := 0; attempt <= m.maxRetries; attempt++ {
			if err = m.upload(m.ctx, path); err == nil {
				break
			}
			if m.ctx.Err() != nil {
				break
			}
		}
		if err != nil {
			slog.Error("mirror upload failed",
				slog.Int("worker", id),
				slog.String("path", path),
				slog.Int("attempts", m.maxRetries+1),
				slog.String("error", err.Error()),
			)
			continue
		}
		slog.Debug("mirror upload ok", slog.String("path", path))
	}
}

func (m *Mirror) upload(ctx context.Context, localPath string) error {
	objectName := m.basePath + filepath.Base(localPath)
	_, err := m.uploader.FPutObject(ctx, m.bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", objectName, err)
	}
	return nil
}
