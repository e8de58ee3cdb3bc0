package domain

// AudioFeatures is the immutable snapshot handed out at the end of a
// recording session. RMSLoudness and PeakAmplitude describe the last
// processed buffer only.
type AudioFeatures struct {
	RMSLoudness     float64 `json:"rms_loudness"`
	PeakAmplitude   float64 `json:"peak_amplitude"`
	DurationSeconds float64 `json:"duration_seconds"`
}
