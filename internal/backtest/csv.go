package backtest

import (
	"encoding/csv"
	"os"
	"strconv"

	"auto-trader/internal/types"
)

// WriteCSV dumps the trade log for spreadsheet analysis.
func WriteCSV(trades []types.Trade, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	_ = w.Write([]string{
		"market", "side", "entry_time", "exit_time", "entry_price", "exit_price",
		"size", "pnl", "pnl_percent", "exit_reason",
	})
	for _, t := range trades {
		_ = w.Write([]string{
			t.Market, string(t.Side),
			strconv.FormatInt(t.EntryTime, 10), strconv.FormatInt(t.ExitTime, 10),
			formatF(t.EntryPrice), formatF(t.ExitPrice),
			formatF(t.Size), formatF(t.Pnl), formatF(t.PnlPercent), string(t.ExitReason),
		})
	}
	return nil
}

func formatF(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
