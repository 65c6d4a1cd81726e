package results

import (
	"errors"
	"fmt"

	"energyhub/internal/hydro"
)

// LedgerRow is one row of per-timestep output.
// This is the primary artifact for "what happened" in a solved unit.
type LedgerRow struct {
	Timestep int `json:"timestep"`

	Node       string `json:"node"`
	Technology string `json:"technology"`
	Carrier    string `json:"carrier"`

	Mode Mode `json:"mode"`

	Input        float64 `json:"input"`
	Output       float64 `json:"output"`
	Spilling     float64 `json:"spilling"`
	StorageLevel float64 `json:"storage_level"`
}

type Summary struct {
	Size          float64 `json:"size"`
	TotalInput    float64 `json:"total_input"`
	TotalOutput   float64 `json:"total_output"`
	TotalSpilling float64 `json:"total_spilling"`
	FinalLevel    float64 `json:"final_level"`
	Simultaneous  int     `json:"simultaneous_timesteps"`
}

// Ledger flattens a solved operation into rows, timesteps numbered from 1.
func Ledger(node string, op *hydro.Operation) ([]LedgerRow, error) {
	if op == nil {
		return nil, errors.New("operation is nil")
	}
	n := len(op.StorageLevel)
	if len(op.Input) != n || len(op.Output) != n || len(op.Spilling) != n {
		return nil, fmt.Errorf("technology %s: result series lengths differ (input %d, output %d, spilling %d, level %d)",
			op.Technology, len(op.Input), len(op.Output), len(op.Spilling), n)
	}
	rows := make([]LedgerRow, n)
	for t := 0; t < n; t++ {
		rows[t] = LedgerRow{
			Timestep:     t + 1,
			Node:         node,
			Technology:   op.Technology,
			Carrier:      op.Carrier,
			Mode:         ModeFromFlows(op.Input[t], op.Output[t]),
			Input:        op.Input[t],
			Output:       op.Output[t],
			Spilling:     op.Spilling[t],
			StorageLevel: op.StorageLevel[t],
		}
	}
	return rows, nil
}

func Summarize(size float64, rows []LedgerRow) Summary {
	s := Summary{Size: size}
	for _, r := range rows {
		s.TotalInput += r.Input
		s.TotalOutput += r.Output
		s.TotalSpilling += r.Spilling
		if r.Mode == ModeSimultaneous {
			s.Simultaneous++
		}
	}
	if len(rows) > 0 {
		s.FinalLevel = rows[len(rows)-1].StorageLevel
	}
	return s
}
