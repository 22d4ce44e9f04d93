package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tripload/src/config"
	"tripload/src/storage"
)

// Job is a single file transfer derived from one index of the source range.
type Job struct {
	Index      int
	FileName   string
	URL        string
	ObjectName string
	// LocalPath is only reported in logs; nothing is written to disk.
	LocalPath string
}

// BuildJobs expands the half-open index range of the source into jobs.
func BuildJobs(source config.SourceConfig) []Job {
	jobs := make([]Job, 0, max(source.Stop-source.Start, 0))

	for index := source.Start; index < source.Stop; index++ {
		fileName := source.FileName(index)

		jobs = append(jobs, Job{
			Index:      index,
			FileName:   fileName,
			URL:        source.URL(fileName),
			ObjectName: fileName,
			LocalPath:  source.LocalDir + fileName,
		})
	}

	return jobs
}

// TransferResult represents the outcome of a single transfer.
type TransferResult struct {
	Job          Job
	Size         int64
	DeclaredSize int64
	ContentType  string
	ETag         string
	SHA256       string
	Elapsed      time.Duration
	Err          error
}

// Failed reports whether the transfer ended in an error.
func (result TransferResult) Failed() bool {
	return result.Err != nil
}

// Source opens a streamed download.
type Source interface {
	Open(ctx context.Context, url string) (*storage.Download, error)
}

// Runner moves every configured file from its URL into the bucket, one at a time.
type Runner struct {
	cfg            *config.Config
	source         Source
	store          storage.Store
	logger         *zap.Logger
	progressOutput io.Writer
	progress       *mpb.Progress
}

// NewRunner creates a new Runner.
func NewRunner(cfg *config.Config, source Source, store storage.Store, logger *zap.Logger) *Runner {
	runner := &Runner{
		cfg:    cfg,
		source: source,
		store:  store,
		logger: logger,
	}

	if cfg.Settings.Progress {
		runner.progressOutput = os.Stderr
	}

	return runner
}

// Run provisions the bucket and transfers every job in index order. A
// bucket error aborts the run; transfer errors are logged and skipped.
func (runner *Runner) Run(ctx context.Context) ([]TransferResult, error) {
	err := runner.EnsureBucket(ctx)
	if err != nil {
		return nil, err
	}

	jobs := BuildJobs(runner.cfg.Source)
	results := make([]TransferResult, 0, len(jobs))

	// A nil output disables rendering.
	runner.progress = mpb.NewWithContext(ctx, mpb.WithOutput(runner.progressOutput))

	for _, job := range jobs {
		results = append(results, runner.TransferOne(ctx, job))
	}

	runner.progress.Wait()
	runner.progress = nil

	runner.logger.Info("End of downloading data into Minio.")

	return results, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (runner *Runner) EnsureBucket(ctx context.Context) error {
	bucket := runner.cfg.Storage.Bucket

	exists, err := runner.store.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("checking bucket: %w", err)
	}

	if exists {
		return nil
	}

	err = runner.store.MakeBucket(ctx, bucket)
	if err != nil {
		return fmt.Errorf("making bucket: %w", err)
	}

	runner.logger.Info(fmt.Sprintf("Created bucket %s.", bucket))

	return nil
}

// TransferOne streams one file into the bucket. It never panics or returns
// an error: the outcome, including time-to-failure, is in the result.
func (runner *Runner) TransferOne(ctx context.Context, job Job) TransferResult {
	start := time.Now()

	runner.logger.Info("Start of downloading " + job.FileName)
	runner.logger.Info("URL: " + job.URL)

	result := runner.transfer(ctx, job)
	result.Job = job
	result.Elapsed = time.Since(start)

	if result.Failed() {
		runner.logger.Error(result.Err.Error())
	} else {
		runner.logger.Info(fmt.Sprintf("Downloaded %s into %s", job.FileName, job.LocalPath),
			zap.Int64("size", result.Size),
			zap.String("content_type", result.ContentType),
			zap.String("etag", result.ETag),
			zap.String("sha256", result.SHA256),
		)
	}

	runner.logger.Info(fmt.Sprintf("End of downloading %s.", job.FileName))
	runner.logger.Info(fmt.Sprintf("%s was downloaded in %s seconds.", job.FileName, formatSeconds(result.Elapsed)))

	return result
}

func (runner *Runner) transfer(ctx context.Context, job Job) TransferResult {
	result := TransferResult{DeclaredSize: storage.UnknownSize}

	download, err := runner.source.Open(ctx, job.URL)
	if err != nil {
		result.Err = err

		return result
	}

	defer download.Body.Close()

	result.DeclaredSize = download.Size
	result.ContentType = download.ContentType

	// The pipe holds nothing: memory is the copy buffer plus the part the
	// store is assembling.
	pipeReader, pipeWriter := io.Pipe()
	hasher := NewSHA256Writer(pipeWriter)
	progressWriter := NewProgressWriter(runner.progress, download.Size, job.FileName)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		_, copyErr := io.Copy(io.MultiWriter(hasher, progressWriter), download.Body)

		pipeWriter.CloseWithError(copyErr)

		if copyErr != nil {
			return fmt.Errorf("streaming %s: %w", job.URL, copyErr)
		}

		return nil
	})

	var info storage.UploadInfo

	group.Go(func() error {
		var putErr error

		info, putErr = runner.store.PutObject(groupCtx, runner.cfg.Storage.Bucket, job.ObjectName, pipeReader,
			download.Size, storage.PutOptions{
				PartSize:    runner.cfg.Settings.PartSize,
				ContentType: download.ContentType,
			})
		if putErr != nil {
			pipeReader.CloseWithError(putErr)
			download.Body.Close()

			return putErr
		}

		pipeReader.Close()

		return nil
	})

	err = group.Wait()
	result.Size = progressWriter.Written()

	if err != nil {
		progressWriter.Abort()

		result.Err = err

		return result
	}

	progressWriter.Finish()

	result.ETag = info.ETag
	result.SHA256 = hasher.Sum()

	return result
}

// formatSeconds renders d in seconds rounded to two decimals.
func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2f", d.Seconds())
}
