package feature

import (
	"math"

	"github.com/cwbudde/algo-biosig/core"
)

func registerTime(e *Extractor) {
	e.register("rms", func(c *segmentContext) (float64, error) {
		sum := 0.0
		for _, v := range c.data {
			sum += v * v
		}
		return math.Sqrt(sum / float64(len(c.data))), nil
	})

	e.register("mav", func(c *segmentContext) (float64, error) {
		sum := 0.0
		for _, v := range c.data {
			sum += math.Abs(v)
		}
		return sum / float64(len(c.data)), nil
	})

	e.register("zero_crossing_rate", func(c *segmentContext) (float64, error) {
		return zeroCrossingRate(c.data, c.opts.DeadZone), nil
	})

	e.register("slope_sign_changes", func(c *segmentContext) (float64, error) {
		return slopeSignChanges(c.data, c.opts.DeadZone), nil
	})

	e.register("waveform_length", func(c *segmentContext) (float64, error) {
		sum := 0.0
		for i := 1; i < len(c.data); i++ {
			sum += math.Abs(c.data[i] - c.data[i-1])
		}
		return sum, nil
	})

	e.register("variance", func(c *segmentContext) (float64, error) {
		_, std := c.moments()
		return std * std, nil
	})

	e.register("std_dev", func(c *segmentContext) (float64, error) {
		_, std := c.moments()
		return std, nil
	})

	e.register("skewness", func(c *segmentContext) (float64, error) {
		return standardizedMoment(c, 3)
	})

	e.register("kurtosis", func(c *segmentContext) (float64, error) {
		// Excess kurtosis: zero for a Gaussian.
		k, err := standardizedMoment(c, 4)
		if err != nil {
			return 0, err
		}
		return k - 3, nil
	})
}

// moments returns the memoized mean and population standard deviation.
func (c *segmentContext) moments() (mean, std float64) {
	if !c.momentsOnce {
		sum := 0.0
		for _, v := range c.data {
			sum += v
		}
		c.mean = sum / float64(len(c.data))
		varSum := 0.0
		for _, v := range c.data {
			d := v - c.mean
			varSum += d * d
		}
		c.std = math.Sqrt(varSum / float64(len(c.data)))
		c.momentsOnce = true
	}
	return c.mean, c.std
}

func standardizedMoment(c *segmentContext, order float64) (float64, error) {
	mean, std := c.moments()
	if std == 0 {
		return 0, &core.DegenerateInputError{
			Operation: "standardized moment",
			Reason:    "standard deviation is zero",
		}
	}
	sum := 0.0
	for _, v := range c.data {
		sum += math.Pow((v-mean)/std, order)
	}
	return sum / float64(len(c.data)), nil
}

// zeroCrossingRate counts sign changes per sample. Samples inside the
// dead zone around zero carry no sign, so noise riding on the baseline
// does not register as crossings.
func zeroCrossingRate(data []float64, deadZone float64) float64 {
	if len(data) < 2 {
		return 0
	}
	count := 0
	prev := 0
	for _, v := range data {
		s := 0
		if v > deadZone {
			s = 1
		} else if v < -deadZone {
			s = -1
		}
		if s != 0 {
			if prev != 0 && s != prev {
				count++
			}
			prev = s
		}
	}
	return float64(count) / float64(len(data)-1)
}

// slopeSignChanges counts samples where the slope reverses and the sample
// amplitude clears the dead zone.
func slopeSignChanges(data []float64, deadZone float64) float64 {
	count := 0
	for i := 1; i < len(data)-1; i++ {
		d1 := data[i] - data[i-1]
		d2 := data[i+1] - data[i]
		if d1*d2 < 0 && math.Abs(data[i]) >= deadZone {
			count++
		}
	}
	return float64(count)
}
