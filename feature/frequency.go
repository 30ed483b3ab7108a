package feature

func registerFrequency(e *Extractor) {
	e.register("mean_freq", func(c *segmentContext) (float64, error) {
		psd, err := c.psd()
		if err != nil {
			return 0, err
		}
		return psd.MeanFreq(), nil
	})

	e.register("median_freq", func(c *segmentContext) (float64, error) {
		psd, err := c.psd()
		if err != nil {
			return 0, err
		}
		return psd.MedianFreq(), nil
	})

	e.register("spectral_entropy", func(c *segmentContext) (float64, error) {
		psd, err := c.psd()
		if err != nil {
			return 0, err
		}
		return psd.Entropy(), nil
	})

	e.register("peak_freq", func(c *segmentContext) (float64, error) {
		psd, err := c.psd()
		if err != nil {
			return 0, err
		}
		return psd.PeakFreq(), nil
	})

	e.register("total_power", func(c *segmentContext) (float64, error) {
		psd, err := c.psd()
		if err != nil {
			return 0, err
		}
		return psd.TotalPower(), nil
	})

	for name, band := range e.opts.Bands {
		b := band
		e.register("band_power_"+name, func(c *segmentContext) (float64, error) {
			psd, err := c.psd()
			if err != nil {
				return 0, err
			}
			return psd.BandPower(b.Low, b.High), nil
		})
	}
}
