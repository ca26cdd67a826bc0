package ta

import "math"

func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func SMA(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		sum += vals[i]
	}
	return sum / float64(n)
}

// StdDev is the population standard deviation of the last n values.
func StdDev(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	m := SMA(vals, n)
	s := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		d := vals[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n))
}

func HighLow(vals []float64) (hi, lo float64) {
	if len(vals) == 0 {
		return math.NaN(), math.NaN()
	}
	hi, lo = vals[0], vals[0]
	for _, v := range vals[1:] {
		if v > hi {
			hi = v
		}
		if v < lo {
			lo = v
		}
	}
	return hi, lo
}

// RangeATR is a simplified average true range over close-only data:
// the mean absolute tick-to-tick delta of the last period values,
// using consecutive closes as high/low proxies.
func RangeATR(vals []float64, period int) float64 {
	if len(vals) < period+1 || period <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(vals) - period; i < len(vals); i++ {
		sum += math.Abs(vals[i] - vals[i-1])
	}
	return sum / float64(period)
}
