package sim

import (
	"encoding/csv"
	"os"
	"strconv"

	"storage-npv/internal/model"
)

// WriteTraceCSV writes per-trial, per-year cash-flow rows. This is the
// diagnostics artifact for detailed-trace runs; normal runs retain only the
// NPV scalar per trial and have nothing to write.
func WriteTraceCSV(path string, traces []model.TrialTrace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"trial",
		"year",
		"gross_margin",
		"operating_cost",
		"depreciation",
		"interest",
		"principal",
		"taxable_income",
		"tax",
		"net_cash_flow",
		"discounted_net",
		"loan_balance",
		"trial_npv",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, t := range traces {
		for _, y := range t.Years {
			row := []string{
				strconv.Itoa(t.Trial),
				strconv.Itoa(y.Year),
				fmtFloat(y.GrossMargin),
				fmtFloat(y.OperatingCost),
				fmtFloat(y.Depreciation),
				fmtFloat(y.Interest),
				fmtFloat(y.Principal),
				fmtFloat(y.TaxableIncome),
				fmtFloat(y.Tax),
				fmtFloat(y.NetCashFlow),
				fmtFloat(y.DiscountedNet),
				fmtFloat(y.LoanBalance),
				fmtFloat(t.NPV),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
