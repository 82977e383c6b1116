// Package reprocess chạy lại ingredient parser trên một batch recipe NDJSON.
package reprocess

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/recipe-parser/app/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWorkers   = 2
	defaultBatchSize = 100
	maxLineSize      = 4 << 20
)

// Reprocessor parse lại một recipe; lỗi nằm trong kết quả (status skipped)
type Reprocessor interface {
	Reprocess(ctx context.Context, recipe models.RecipeIngredients, parserName string) *models.ReprocessResult
}

// Options cấu hình batch
type Options struct {
	Parser    string
	Workers   int
	BatchSize int
	Logger    *zap.Logger
}

// Summary thống kê sau khi chạy
type Summary struct {
	Total    int           `json:"total"`
	Done     int           `json:"done"`
	Skipped  int           `json:"skipped"`
	Invalid  int           `json:"invalid"`
	Duration time.Duration `json:"duration"`
}

// Run reads recipes as NDJSON from in and writes one result per recipe to
// out in input order. Lines that fail to decode and recipes that fail to
// parse are logged and skipped; only I/O errors and cancellation stop the run.
func Run(ctx context.Context, in io.Reader, out io.Writer, rp Reprocessor, opts Options) (Summary, error) {
	if opts.Workers < 1 {
		opts.Workers = defaultWorkers
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = defaultBatchSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	start := time.Now()
	var summary Summary
	enc := json.NewEncoder(out)

	reader := bufio.NewReaderSize(in, 64*1024)

	batch := make([]models.RecipeIngredients, 0, opts.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		results, err := processBatch(ctx, batch, rp, opts)
		if err != nil {
			return err
		}
		for _, res := range results {
			if res.Status == models.ReprocessStatusSkipped {
				summary.Skipped++
				logger.Warn("Bỏ qua recipe",
					zap.String("recipe_id", res.RecipeID),
					zap.String("group_id", res.GroupID),
					zap.String("error", res.Error))
			} else {
				summary.Done++
			}
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
		}
		batch = batch[:0]
		return nil
	}

	line := 0
	for {
		raw, tooLong, readErr := readLine(reader)
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			// kết quả đã đọc vẫn được ghi ra trước khi dừng
			if err := flush(); err != nil {
				return summary, err
			}
			return summary, fmt.Errorf("read input: %w", readErr)
		}
		line++
		if tooLong {
			summary.Total++
			summary.Invalid++
			logger.Warn("Dòng NDJSON quá dài", zap.Int("line", line), zap.Int("max_bytes", maxLineSize))
			continue
		}
		text := strings.TrimSpace(string(raw))
		if text == "" {
			continue
		}
		summary.Total++

		var recipe models.RecipeIngredients
		if err := json.Unmarshal([]byte(text), &recipe); err != nil {
			summary.Invalid++
			logger.Warn("Dòng NDJSON không hợp lệ", zap.Int("line", line), zap.Error(err))
			continue
		}
		batch = append(batch, recipe)
		if len(batch) == opts.BatchSize {
			if err := flush(); err != nil {
				return summary, err
			}
		}
	}
	if err := flush(); err != nil {
		return summary, err
	}

	summary.Duration = time.Since(start)
	logger.Info("Reprocess hoàn thành",
		zap.Int("total", summary.Total),
		zap.Int("done", summary.Done),
		zap.Int("skipped", summary.Skipped),
		zap.Int("invalid", summary.Invalid),
		zap.Duration("took", summary.Duration))
	return summary, nil
}

// readLine một dòng không kèm newline. Dòng dài hơn maxLineSize bị đọc bỏ
// tới hết dòng và trả về tooLong. io.EOF chỉ khi không còn dữ liệu.
func readLine(r *bufio.Reader) (line []byte, tooLong bool, err error) {
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			if err == io.EOF && (len(line) > 0 || tooLong) {
				return line, tooLong, nil
			}
			return nil, false, err
		}
		if !tooLong {
			if len(line)+len(chunk) > maxLineSize {
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if !isPrefix {
			return line, tooLong, nil
		}
	}
}

// processBatch results[i] belongs to batch[i].
func processBatch(ctx context.Context, batch []models.RecipeIngredients, rp Reprocessor, opts Options) ([]*models.ReprocessResult, error) {
	results := make([]*models.ReprocessResult, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, recipe := range batch {
		i, recipe := i, recipe
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = rp.Reprocess(gctx, recipe, opts.Parser)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
