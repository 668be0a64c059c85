package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"process-entry-app/backend/internal/app"
	"process-entry-app/backend/internal/domain/process"
	"process-entry-app/backend/internal/infra/jsoncodec"
	"process-entry-app/backend/internal/infra/logger"
	"process-entry-app/backend/internal/repository"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	outputPath = flag.String("output", "", "file to write JSON lines to; defaults to stdout")
	limit      = flag.Int("limit", 0, "export at most this many records, newest first; 0 exports all")
)

func main() {
	flag.Parse()

	// stdout carries the export, so console logs go to stderr.
	zapLogger, err := newLogger(os.Stderr)
	if err != nil {
		panic(fmt.Sprintf("init logger failed: %v", err))
	}
	defer logger.Sync()
	sugar := zapLogger.Sugar().With("component", "export-records")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, sugar, os.Stdout, strings.TrimSpace(*outputPath), *limit); err != nil {
		stop()
		sugar.Fatalw("export records failed", "error", err)
	}
}

func newLogger(console io.Writer) (*zap.Logger, error) {
	opts := logger.LoadOptions()
	opts.ConsoleOutput = zapcore.AddSync(console)
	l, err := logger.Build(opts)
	if err != nil {
		return nil, err
	}
	logger.Replace(l)
	return l, nil
}

// run exports records to dest, or to stdout when dest is empty. Only the store
// is opened so the export works while the bus is down.
func run(ctx context.Context, sugar *zap.SugaredLogger, stdout io.Writer, dest string, limitN int) (err error) {
	resources, err := app.InitStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := resources.Close(); cerr != nil {
			sugar.Warnw("close resources failed", "error", cerr)
		}
	}()

	out := stdout
	if dest != "" {
		file, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("create output file %s: %w", dest, err)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output file %s: %w", dest, cerr)
			}
		}()
		out = file
	}

	repo := repository.NewProcessRecordRepository(resources.DB)
	records, err := repo.List(ctx, limitN)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	n, err := writeJSONLines(out, records)
	if err != nil {
		return fmt.Errorf("write records (%d written): %w", n, err)
	}
	sugar.Infow("export completed", "records", n, "output", dest)
	return nil
}

func writeJSONLines(w io.Writer, records []process.Record) (int, error) {
	buf := bufio.NewWriter(w)
	for i, record := range records {
		line, err := jsoncodec.Marshal(record)
		if err != nil {
			return i, fmt.Errorf("encode record %s: %w", record.ID, err)
		}
		if _, err := buf.Write(append(line, '\n')); err != nil {
			return i, err
		}
	}
	return len(records), buf.Flush()
}
