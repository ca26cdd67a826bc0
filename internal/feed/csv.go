package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"auto-trader/internal/types"
)

// File format: header "market,ts,price,volume", one observation per
// row, volume optional (empty cell).

type row struct {
	market string
	pt     types.PricePoint
}

func readRows(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	rows := make([]row, 0, len(recs))
	for i, rec := range recs {
		if i == 0 && len(rec) > 1 && rec[1] == "ts" {
			continue // header
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("%s line %d: want market,ts,price[,volume], got %d fields", path, i+1, len(rec))
		}
		ts, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad ts: %w", path, i+1, err)
		}
		price, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad price: %w", path, i+1, err)
		}
		var vol float64
		if len(rec) > 3 && rec[3] != "" {
			if vol, err = strconv.ParseFloat(rec[3], 64); err != nil {
				return nil, fmt.Errorf("%s line %d: bad volume: %w", path, i+1, err)
			}
		}
		rows = append(rows, row{market: rec[0], pt: types.PricePoint{Ts: ts, Price: price, Volume: vol}})
	}
	return rows, nil
}

// LoadSeries reads one market's observations, ordered by timestamp.
// An empty market selects every row.
func LoadSeries(path, market string) ([]types.PricePoint, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	series := make([]types.PricePoint, 0, len(rows))
	for _, r := range rows {
		if market == "" || r.market == market {
			series = append(series, r.pt)
		}
	}
	sort.SliceStable(series, func(i, j int) bool { return series[i].Ts < series[j].Ts })
	return series, nil
}

// CSVReplay replays a recorded multi-market series one observation per
// poll, preserving file order per market. Latest returns io.EOF once a
// market's rows are exhausted.
type CSVReplay struct {
	series map[string][]types.PricePoint
	idx    map[string]int
}

func NewCSVReplay(path string) (*CSVReplay, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	series := make(map[string][]types.PricePoint)
	for _, r := range rows {
		series[r.market] = append(series[r.market], r.pt)
	}
	return &CSVReplay{series: series, idx: make(map[string]int)}, nil
}

func (r *CSVReplay) Latest(ctx context.Context, market string) (types.PricePoint, error) {
	s := r.series[market]
	i := r.idx[market]
	if i >= len(s) {
		return types.PricePoint{}, io.EOF
	}
	r.idx[market] = i + 1
	return s[i], nil
}
