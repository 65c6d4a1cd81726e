package results

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
)

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteLedger(f, ledger)
}

func WriteLedger(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	header := []string{
		"timestep",
		"node",
		"technology",
		"carrier",
		"mode",
		"input",
		"output",
		"spilling",
		"storage_level",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Timestep),
			r.Node,
			r.Technology,
			r.Carrier,
			string(r.Mode),
			fmtFloat(r.Input),
			fmtFloat(r.Output),
			fmtFloat(r.Spilling),
			fmtFloat(r.StorageLevel),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
