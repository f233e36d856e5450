// Package analysis provides audio analysis tools for the plugin editor and
// the standalone host.
//
// Spectral Analysis:
//   - FFT magnitude spectra with selectable windows
//   - Real-time spectrum analyzer with averaging modes
//   - Fractional-octave band levels
//
// Level Metering:
//   - Peak meter with hold and decay
//   - RMS (Root Mean Square) meter
//
// Example usage:
//
//	sa, err := analysis.NewSpectrumAnalyzer(2048, 44100, analysis.HannWindow)
//	if err != nil {
//	    return err
//	}
//	sa.SetAveraging(analysis.ExponentialAveraging, 10)
//
//	if sa.Process(samples) {
//	    spectrum := sa.GetSpectrumDBInRange()
//	    peakFreq, peakMag := sa.GetPeakFrequency()
//	}
package analysis
