package engine

import "github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"

// Stats summarises activity since the engine was created. Rates are percentages of the
// total number of Decide calls.
func (e *Engine) Stats() types.EngineStats {
	st := types.EngineStats{
		TotalDecisions:     e.total.Load(),
		EstimatorDecisions: e.estimatorHit.Load(),
		HeuristicDecisions: e.heuristicHit.Load(),
		SafetyBlocks:       e.blocks.Load(),
		Errors:             e.errs.Load(),
		ActionCounts:       make(map[types.Action]int64, len(e.actions)),
		HasEstimator:       e.est != nil,
		HistorySize:        e.history.Len(),
	}
	for a, c := range e.actions {
		st.ActionCounts[a] = c.Load()
	}

	if st.TotalDecisions > 0 {
		total := float64(st.TotalDecisions)
		st.EstimatorUsagePct = float64(st.EstimatorDecisions) / total * 100
		st.BlockRatePct = float64(st.SafetyBlocks) / total * 100
		st.ErrorRatePct = float64(st.Errors) / total * 100
	}
	return st
}
