package assign

import (
	"gonum.org/v1/gonum/stat"

	"github.com/pmarg/reseat/core/model"
)

// BalanceReport summarizes how evenly the pass spread the fleet. Ratios are
// the per-bus peak relative load after simulation; buses without capacity
// are excluded.
type BalanceReport struct {
	Mean   float64
	StdDev float64
	Peak   float64
}

func buildBalanceReport(buses []model.Bus, sim map[string]map[model.Shift]int) BalanceReport {
	var ratios []float64
	for _, b := range buses {
		if b.Capacity <= 0 {
			continue
		}
		peak := 0.0
		for _, load := range sim[b.ID] {
			if r := float64(load) / float64(b.Capacity); r > peak {
				peak = r
			}
		}
		ratios = append(ratios, peak)
	}
	if len(ratios) == 0 {
		return BalanceReport{}
	}
	rep := BalanceReport{Mean: stat.Mean(ratios, nil)}
	if len(ratios) > 1 {
		rep.StdDev = stat.StdDev(ratios, nil)
	}
	for _, r := range ratios {
		if r > rep.Peak {
			rep.Peak = r
		}
	}
	return rep
}
