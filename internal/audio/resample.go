// ABOUTME: Linear-interpolation resampler for mono capture frames
// ABOUTME: Converts native capture rate to the 24 kHz wire rate per frame
package audio

// Resample converts a mono frame from rateIn to rateOut using linear
// interpolation, producing ceil(len(frame)*rateOut/rateIn) samples.
//
// Each frame is resampled independently, so interpolation restarts at every
// frame boundary. For speech-sized frames the boundary artifact is
// inaudible; a continuous streaming filter would need carried state across
// frames.
func Resample(frame []float32, rateIn, rateOut int) []float32 {
	if len(frame) == 0 || rateIn <= 0 || rateOut <= 0 {
		return nil
	}
	if rateIn == rateOut {
		out := make([]float32, len(frame))
		copy(out, frame)
		return out
	}

	outLen := (len(frame)*rateOut + rateIn - 1) / rateIn
	out := make([]float32, outLen)
	ratio := float64(rateIn) / float64(rateOut)

	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(frame)-1 {
			out[i] = frame[len(frame)-1]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = frame[idx]*(1-frac) + frame[idx+1]*frac
	}
	return out
}
