package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/alnah/go-pdf2grid"
)

// conversionParams groups parameters shared across batch/file conversion.
type conversionParams struct {
	shape     pdf2grid.GridShape
	threshold int
	noExport  bool
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Result     *pdf2grid.ConvertResult
	Err        error
	Duration   time.Duration
}

// convertBatch processes files concurrently using the converter pool.
// Each file is handled by exactly one worker; results keep input order.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire()
			if err != nil {
				// Converter creation failed, mark this worker's share as failed
				for idx := range jobs {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       fmt.Errorf("creating converter: %w", err),
					}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, conv GridConverter, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}

	threshold := params.threshold
	input := pdf2grid.Input{
		PDFPath:   f.InputPath,
		Shape:     params.shape,
		Threshold: &threshold,
	}
	if !params.noExport {
		input.OutputPath = f.OutputPath
	}

	res, err := conv.Convert(ctx, input)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = err
		return result
	}

	result.Result = res
	result.OutputPath = res.OutputPath
	return result
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printOptions controls the per-file console report.
type printOptions struct {
	quiet       bool
	verbose     bool
	previewRows int
	format      string // output.format, for hints
}

// printResultsWithWriter outputs conversion results using the provided writers.
// Returns the number of failed conversions.
func printResultsWithWriter(results []ConversionResult, opts printOptions, env *Environment) int {
	summary := countResults(results)
	multi := len(results) > 1

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, hintFor(r.Err, opts.format))
			continue
		}

		if opts.quiet {
			continue
		}

		if multi {
			fmt.Fprintf(env.Stdout, "==> %s\n", r.InputPath)
		}
		printReport(env.Stdout, r, opts)
		if multi {
			fmt.Fprintln(env.Stdout)
		}
	}

	if !opts.quiet && multi {
		fmt.Fprintf(env.Stdout, "%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

// printReport writes the stage timings and the first grid rows of one
// conversion. The total covers rasterization and discretization.
func printReport(w io.Writer, r ConversionResult, opts printOptions) {
	res := r.Result
	t := res.Timings

	fmt.Fprintln(w, "Execution Times:")
	fmt.Fprintf(w, "PDF to Image Conversion: %.2f seconds\n", t.Rasterize.Seconds())
	fmt.Fprintf(w, "Image to Grid Conversion: %.2f seconds\n", t.Discretize.Seconds())
	if opts.verbose && r.OutputPath != "" {
		fmt.Fprintf(w, "Grid Export: %.2f seconds\n", t.Export.Seconds())
	}
	fmt.Fprintf(w, "Total Execution Time: %.2f seconds\n", (t.Rasterize + t.Discretize).Seconds())

	if opts.verbose {
		fmt.Fprintf(w, "Page raster: %dx%d pixels, %d of %d cells occupied\n",
			res.ImageWidth, res.ImageHeight, res.Grid.OccupiedCount(), res.Grid.Rows()*res.Grid.Cols())
	}

	if opts.previewRows > 0 {
		fmt.Fprintln(w, "Generated Grid (partial view):")
		_ = res.Grid.WriteRows(w, opts.previewRows)
	}

	if r.OutputPath != "" {
		fmt.Fprintf(w, "Created %s\n", r.OutputPath)
	}
}
