package dataset

import (
	"fmt"
	"sort"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/analyzer"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/features"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

const reportedErrors = 10

// Report says whether a dataset is ready for training.
type Report struct {
	Valid        bool     `json:"valid"`
	TotalRecords int      `json:"total_records"`
	ValidRecords int      `json:"valid_records"`
	ErrorCount   int      `json:"error_count"`
	Errors       []string `json:"errors"`
	Message      string   `json:"message"`
}

// Validate reports on res; a dataset needs at least minRecords usable lines.
func Validate(res *Result, minRecords int) Report {
	rep := Report{
		TotalRecords: res.Total,
		ValidRecords: len(res.Records),
		ErrorCount:   len(res.Errors),
		Errors:       []string{},
	}
	for i, e := range res.Errors {
		if i == reportedErrors {
			break
		}
		rep.Errors = append(rep.Errors, e.Error())
	}

	rep.Valid = rep.ValidRecords >= minRecords
	if rep.Valid {
		rep.Message = "Ready for training"
	} else {
		rep.Message = fmt.Sprintf("Need at least %d valid records (have %d)", minRecords, rep.ValidRecords)
	}
	return rep
}

// LabelSummary describes the label distribution of a dataset.
type LabelSummary struct {
	Count          int            `json:"count"`
	Mean           float64        `json:"mean"`
	StdDev         float64        `json:"std_dev"`
	P10            float64        `json:"p10"`
	Median         float64        `json:"median"`
	P90            float64        `json:"p90"`
	ProfitableRate float64        `json:"profitable_rate"`
	Actions        map[string]int `json:"actions"`
}

func Summarize(records []Record) (LabelSummary, error) {
	sum := LabelSummary{Count: len(records), Actions: map[string]int{}}

	labels := make([]float64, 0, len(records))
	profitable := 0
	for _, r := range records {
		labels = append(labels, r.Label)
		if r.Label > 0 {
			profitable++
		}
		action := r.Action
		if action == "" {
			action = "unknown"
		}
		sum.Actions[action]++
	}

	mean, std, err := analyzer.MeanStdDev(labels)
	if err != nil {
		return sum, err
	}
	sort.Float64s(labels)

	sum.Mean = mean
	sum.StdDev = std
	sum.P10 = analyzer.Quantile(labels, 0.1)
	sum.Median = analyzer.Quantile(labels, 0.5)
	sum.P90 = analyzer.Quantile(labels, 0.9)
	sum.ProfitableRate = float64(profitable) / float64(len(records))
	return sum, nil
}

// BuildPairs extracts the feature vector of every record.
func BuildPairs(records []Record, ex *features.Extractor) []types.TrainingPair {
	pairs := make([]types.TrainingPair, 0, len(records))
	for i := range records {
		pairs = append(pairs, types.TrainingPair{
			Features: ex.Extract(&records[i].State),
			Label:    records[i].Label,
		})
	}
	return pairs
}
