package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/genedex/internal/db/elastic"
	"github.com/kailas-cloud/genedex/internal/domain/gene"
	"github.com/kailas-cloud/genedex/internal/domain/query"
	logpkg "github.com/kailas-cloud/genedex/internal/logger"
	repogene "github.com/kailas-cloud/genedex/internal/repository/gene"
	geneuc "github.com/kailas-cloud/genedex/internal/usecase/gene"
)

// documentSource yields documents until exhausted or failed.
type documentSource interface {
	Documents(ctx context.Context) iter.Seq2[gene.Document, error]
}

func dumpCommand(c *cli.Context) error {
	logger, err := logpkg.NewLogger(c.String("env"), c.String("log-level"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := elastic.NewStore(elastic.Config{
		Addrs:          c.StringSlice("es-addr"),
		Username:       c.String("es-username"),
		Password:       c.String("es-password"),
		APIKey:         c.String("es-api-key"),
		RequestTimeout: c.Duration("timeout"),
	})
	if err != nil {
		return fmt.Errorf("create backend client: %w", err)
	}
	defer store.Close()
	if err := store.WaitForReady(ctx, c.Duration("timeout")); err != nil {
		return fmt.Errorf("backend not ready: %w", err)
	}

	svc := geneuc.New(repogene.New(store, logger), geneuc.Config{
		Targets: geneuc.Targets{Index: c.String("index")},
	}, logger)

	it, err := svc.Scroll(geneuc.ScrollOptions{
		Filter:    c.String("filter"),
		Fields:    query.ParseFields(c.String("fields")),
		From:      c.Int("from"),
		BatchSize: c.Int("batch-size"),
		KeepAlive: c.Duration("keep-alive"),
		Stop:      c.Int("stop"),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := it.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Failed to release scroll cursor", zap.Error(err))
		}
	}()

	out, closeOut, err := openOutput(c.String("output"), c.App.Writer)
	if err != nil {
		return err
	}
	defer closeOut()

	start := time.Now()
	n, err := writeDocuments(ctx, it, out)
	if err != nil {
		logger.Error("Export failed", zap.Int("written", n), zap.Error(err))
		return err
	}
	logger.Info("Export finished",
		zap.Int("written", n),
		zap.Int("total", it.Total()),
		zap.Int("batches", it.Batches()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func queryCommand(c *cli.Context) error {
	term := c.Args().First()
	if term == "" {
		return errors.New("a search term is required")
	}
	species, err := query.ParseSpecies(c.String("species"))
	if err != nil {
		return err
	}
	mode, err := query.ParseMode(c.String("mode"))
	if err != nil {
		return err
	}

	svc := geneuc.New(nil, geneuc.Config{}, nil)
	body, err := svc.BuildQuery(term, geneuc.SearchOptions{
		Page:  query.Options{Size: c.Int("size"), Species: species},
		Mode:  mode,
		TaxID: c.Int("taxid"),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(body)
}

// writeDocuments encodes documents as JSON lines and returns how many were written.
func writeDocuments(ctx context.Context, src documentSource, w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	n := 0
	for doc, err := range src.Documents(ctx) {
		if err != nil {
			_ = bw.Flush()
			return n, err
		}
		if err := enc.Encode(doc); err != nil {
			return n, fmt.Errorf("encode document %s: %w", doc.ID(), err)
		}
		n++
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("flush output: %w", err)
	}
	return n, nil
}

func openOutput(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
