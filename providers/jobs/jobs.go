package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edlowe/flatsheet/core/convert"
	"github.com/edlowe/flatsheet/core/reshape"
	"github.com/edlowe/flatsheet/providers/ingest"
	"github.com/edlowe/flatsheet/providers/sheet"
	"github.com/edlowe/flatsheet/providers/storage"
)

// Working folders inside the bucket.
const (
	InputFolder     = ingest.InputFolder
	OutputFolder    = "csv_Output_File"
	FormattedFolder = "Formatted_csv_Output_File"
)

// Runner executes the batch jobs against one store.
type Runner struct {
	store storage.Store
	conv  *convert.Converter
	log   *slog.Logger
	now   func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithClock sets the clock used for output naming, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner returns a Runner over store using conv for document conversion.
func NewRunner(store storage.Store, conv *convert.Converter, opts ...Option) *Runner {
	r := &Runner{
		store: store,
		conv:  conv,
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ConvertReport summarises one conversion run.
type ConvertReport struct {
	// Converted lists the output paths written.
	Converted []string
	// Skipped lists input files that yielded no JSON objects.
	Skipped []string
	// Warnings counts the fragments extraction had to discard across all
	// converted files.
	Warnings int
}

// Convert turns every document in the input folder into a wide CSV in the
// output folder. Documents with no extractable JSON are skipped and reported;
// any other per-file failure aborts the run.
func (r *Runner) Convert(ctx context.Context) (*ConvertReport, error) {
	objs, err := r.store.List(ctx, InputFolder)
	if err != nil {
		return nil, fmt.Errorf("list input folder: %w", err)
	}

	report := &ConvertReport{}
	for _, obj := range objs {
		inPath := InputFolder + "/" + obj.Name

		data, err := r.store.Download(ctx, inPath)
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", inPath, err)
		}

		result, err := r.conv.Convert(string(data))
		if errors.Is(err, convert.ErrEmptyInput) {
			r.log.Warn("skipping input with no JSON objects", "path", inPath)
			report.Skipped = append(report.Skipped, obj.Name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", inPath, err)
		}

		for _, w := range result.Warnings {
			r.log.Warn("discarded fragment",
				"path", inPath, "line", w.Line, "reason", w.Reason)
		}
		report.Warnings += len(result.Warnings)

		encoded, err := sheet.EncodeCSV(result.Table)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", inPath, err)
		}

		outPath := OutputFolder + "/" + sheet.OutputName("csv", obj.Name, "csv", r.now())
		if err := r.store.Upload(ctx, outPath, encoded, "text/csv"); err != nil {
			return nil, fmt.Errorf("upload %s: %w", outPath, err)
		}

		r.log.Info("converted document",
			"input", inPath, "output", outPath,
			"columns", len(result.Table.Columns), "warnings", len(result.Warnings))
		report.Converted = append(report.Converted, outPath)
	}
	return report, nil
}

// FormatReport summarises one reformat run.
type FormatReport struct {
	// Formatted lists the long-form output paths written.
	Formatted []string
	// Skipped lists sheets whose wide row carried no hierarchy columns.
	Skipped []string
}

// Format reshapes every wide sheet in the output folder into its long form
// in the formatted folder, keeping the filename. Sheets without hierarchy
// columns are skipped and reported rather than written empty.
func (r *Runner) Format(ctx context.Context) (*FormatReport, error) {
	objs, err := r.store.List(ctx, OutputFolder)
	if err != nil {
		return nil, fmt.Errorf("list output folder: %w", err)
	}

	report := &FormatReport{}
	for _, obj := range objs {
		inPath := OutputFolder + "/" + obj.Name

		data, err := r.store.Download(ctx, inPath)
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", inPath, err)
		}

		wide, err := sheet.Decode(obj.Name, data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", inPath, err)
		}
		if len(wide.Rows) == 0 {
			r.log.Warn("skipping sheet with no data rows", "path", inPath)
			report.Skipped = append(report.Skipped, obj.Name)
			continue
		}

		long := reshape.Reshape(wide.Columns, wide.RowMap(0))
		if len(long.Rows) == 0 {
			r.log.Warn("skipping sheet", "path", inPath, "reason", convert.ErrNoHierarchy)
			report.Skipped = append(report.Skipped, obj.Name)
			continue
		}

		encoded, err := sheet.Encode(obj.Name, long)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", inPath, err)
		}

		outPath := FormattedFolder + "/" + obj.Name
		if err := r.store.Upload(ctx, outPath, encoded, contentTypeFor(obj.Name)); err != nil {
			return nil, fmt.Errorf("upload %s: %w", outPath, err)
		}

		r.log.Info("reformatted sheet",
			"input", inPath, "output", outPath, "rows", len(long.Rows))
		report.Formatted = append(report.Formatted, outPath)
	}
	return report, nil
}

// CleanupReport summarises one cleanup sweep.
type CleanupReport struct {
	// Removed counts deleted objects per folder.
	Removed map[string]int
}

// Cleanup removes every object from all three working folders.
func (r *Runner) Cleanup(ctx context.Context) (*CleanupReport, error) {
	report := &CleanupReport{Removed: make(map[string]int)}

	for _, folder := range []string{InputFolder, OutputFolder, FormattedFolder} {
		objs, err := r.store.List(ctx, folder)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", folder, err)
		}
		if len(objs) == 0 {
			report.Removed[folder] = 0
			continue
		}

		paths := make([]string, 0, len(objs))
		for _, obj := range objs {
			paths = append(paths, folder+"/"+obj.Name)
		}
		if err := r.store.Remove(ctx, paths); err != nil {
			return nil, fmt.Errorf("remove from %s: %w", folder, err)
		}

		r.log.Info("cleaned folder", "folder", folder, "removed", len(paths))
		report.Removed[folder] = len(paths)
	}
	return report, nil
}

func contentTypeFor(name string) string {
	if sheet.FormatFor(name) == sheet.FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
