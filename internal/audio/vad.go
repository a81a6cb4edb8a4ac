package audio

// DetectorConfig tunes energy-based voice activity detection.
type DetectorConfig struct {
	EnergyThreshold float64 // RMS energy above which a chunk counts as speech
	SilenceFrames   int     // consecutive silent chunks that end an utterance
}

func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		EnergyThreshold: 500.0,
		SilenceFrames:   10,
	}
}

// Detector tracks whether a stream is currently inside an utterance.
// One Detector belongs to one audio stream; it is not safe for
// concurrent use.
type Detector struct {
	cfg     DetectorConfig
	silence int
	voiced  bool
}

func NewDetector(cfg DetectorConfig) *Detector {
	if cfg.EnergyThreshold <= 0 {
		cfg.EnergyThreshold = DefaultDetectorConfig().EnergyThreshold
	}
	if cfg.SilenceFrames <= 0 {
		cfg.SilenceFrames = DefaultDetectorConfig().SilenceFrames
	}
	return &Detector{cfg: cfg}
}

// Process consumes one chunk of samples and reports whether the stream is
// voiced and whether this chunk ended an utterance.
func (d *Detector) Process(samples []int16) (voiced, ended bool) {
	if RMS(samples) > d.cfg.EnergyThreshold {
		d.silence = 0
		d.voiced = true
		return true, false
	}

	d.silence++
	if d.voiced && d.silence >= d.cfg.SilenceFrames {
		d.voiced = false
		d.silence = 0
		return false, true
	}
	return d.voiced, false
}

// Voiced reports whether the detector is inside an utterance.
func (d *Detector) Voiced() bool { return d.voiced }

func (d *Detector) Reset() {
	d.silence = 0
	d.voiced = false
}
