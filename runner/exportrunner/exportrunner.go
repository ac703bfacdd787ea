package exportrunner

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadewadee/hashcat-dashboard/internal/clipboard"
	"github.com/sadewadee/hashcat-dashboard/internal/domain"
	"github.com/sadewadee/hashcat-dashboard/internal/export"
	"github.com/sadewadee/hashcat-dashboard/internal/repository"
	"github.com/sadewadee/hashcat-dashboard/internal/service"
	"github.com/sadewadee/hashcat-dashboard/runner"
	"github.com/sadewadee/hashcat-dashboard/tlmt"
)

type exportrunner struct {
	cfg       *runner.Config
	store     *repository.Store
	results   *service.ResultService
	clipboard clipboard.Clipboard
	notifier  clipboard.Notifier
	now       func() time.Time
}

// New opens the database for a one-shot export or copy
func New(cfg *runner.Config) (runner.Runner, error) {
	if cfg.RunMode != runner.RunModeExport {
		return nil, fmt.Errorf("%w: %d", runner.ErrInvalidRunMode, cfg.RunMode)
	}

	if cfg.Dsn == "" {
		cfg.Dsn = filepath.Join(cfg.DataFolder, "hashcat.db")
	}

	store, err := repository.Open(cfg.Dsn)
	if err != nil {
		return nil, err
	}

	return &exportrunner{
		cfg:       cfg,
		store:     store,
		results:   service.NewResultService(store.Results, store.Tasks),
		clipboard: clipboard.SystemClipboard{},
		notifier:  clipboard.LogNotifier{},
		now:       time.Now,
	}, nil
}

func (e *exportrunner) Run(ctx context.Context) error {
	if e.cfg.CopyResult > 0 {
		if err := e.copyResult(ctx); err != nil {
			return err
		}
	}

	if e.cfg.ExportFormat == "" {
		return nil
	}

	return e.export(ctx)
}

func (e *exportrunner) Close(context.Context) error {
	return e.store.Close()
}

func (e *exportrunner) copyResult(ctx context.Context) error {
	kind, err := clipboard.ParseKind(e.cfg.CopyKind)
	if err != nil {
		return err
	}

	res, err := e.results.GetByID(ctx, e.cfg.CopyResult)
	if err != nil {
		return err
	}

	_, err = clipboard.NewCopier(e.clipboard, e.notifier).Copy(ctx, kind, res.HashValue, res.Plaintext)
	return err
}

func (e *exportrunner) export(ctx context.Context) error {
	format, err := export.ParseFormat(e.cfg.ExportFormat)
	if err != nil {
		return err
	}

	rows, source, err := e.rows(ctx)
	if err != nil {
		return err
	}

	file, err := export.Encode(format, rows)
	if err != nil {
		return err
	}

	dst := e.cfg.ExportFile
	if dst == "" {
		dst = filepath.Join(e.cfg.DataFolder, file.Name)
	}

	if err := os.WriteFile(dst, file.Data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}

	log.Printf("exported %d results from %s to %s", len(rows), source, dst)

	_ = runner.Telemetry().Send(ctx, tlmt.NewEvent("export", map[string]any{
		"format":  string(format),
		"source":  source,
		"results": len(rows),
	}))

	if e.cfg.S3Uploader == nil || e.cfg.S3Bucket == "" {
		return nil
	}

	key := e.objectKey(file.Name)
	if err := e.cfg.S3Uploader.Upload(ctx, e.cfg.S3Bucket, key, file.ContentType, bytes.NewReader(file.Data)); err != nil {
		return err
	}

	log.Printf("archived export to s3://%s/%s", e.cfg.S3Bucket, key)

	return nil
}

// rows reads the export rows from the saved page when one is given,
// from the database otherwise.
func (e *exportrunner) rows(ctx context.Context) ([]domain.ResultRow, string, error) {
	if e.cfg.ExportPage != "" {
		f, err := os.Open(e.cfg.ExportPage)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open results page: %w", err)
		}
		defer f.Close()

		rows, err := export.RowsFromHTML(f)
		if err != nil {
			return nil, "", err
		}

		return rows, e.cfg.ExportPage, nil
	}

	filter, err := e.filter()
	if err != nil {
		return nil, "", err
	}

	results, err := export.Collect(ctx, e.results, filter)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read results: %w", err)
	}

	return export.RowsFromResults(results), "database", nil
}

func (e *exportrunner) filter() (domain.ResultFilter, error) {
	filter := domain.ResultFilter{
		HashValue: strings.TrimSpace(e.cfg.ExportHash),
		Plaintext: strings.TrimSpace(e.cfg.ExportPlaintext),
	}

	if s := strings.TrimSpace(e.cfg.ExportTaskID); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return filter, fmt.Errorf("invalid task id %q: %w", s, err)
		}
		filter.TaskID = &id
	}

	return filter, nil
}

// objectKey prefixes the file name with the export time, e.g.
// exports/20240301T100000Z-hashcat-results.csv
func (e *exportrunner) objectKey(name string) string {
	return "exports/" + e.now().UTC().Format("20060102T150405Z") + "-" + name
}
