// Package batch runs the tilt search for several candidate sites at once.
package batch

import (
	"context"
	"errors"
	"fmt"

	"Helio/internal/calc/tilt"
)

const MaxSites = 20

var ErrBatch = errors.New("batch: invalid batch")

type TiltBatchInput struct {
	Sites []tilt.Input `json:"sites"`
}

type TiltBatchResult struct {
	Results []tilt.Result `json:"results"`
	// Best indexes the site with the highest annual yield, -1 when none
	// produced an optimum.
	Best int `json:"best"`
}

// CalculateTilt runs sites one after another; each run already fans out over
// months.
func CalculateTilt(ctx context.Context, opt *tilt.Optimizer, in TiltBatchInput) (TiltBatchResult, error) {
	if len(in.Sites) == 0 {
		return TiltBatchResult{}, fmt.Errorf("%w: no sites", ErrBatch)
	}
	if len(in.Sites) > MaxSites {
		return TiltBatchResult{}, fmt.Errorf("%w: %d sites, limit %d", ErrBatch, len(in.Sites), MaxSites)
	}
	out := TiltBatchResult{Results: make([]tilt.Result, 0, len(in.Sites)), Best: -1}
	for i, site := range in.Sites {
		res, err := opt.Optimize(ctx, site)
		if err != nil {
			return TiltBatchResult{}, fmt.Errorf("site %d: %w", i, err)
		}
		if res.Found() && (out.Best < 0 || res.AnnualYieldMWh > out.Results[out.Best].AnnualYieldMWh) {
			out.Best = i
		}
		out.Results = append(out.Results, res)
	}
	return out, nil
}
