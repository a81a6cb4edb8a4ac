package audio

import "testing"

func frame(amplitude int16) []int16 {
	samples := make([]int16, 160)
	for i := range samples {
		samples[i] = amplitude
	}
	return samples
}

func TestDetectorSpeech(t *testing.T) {
	d := NewDetector(DetectorConfig{EnergyThreshold: 500.0, SilenceFrames: 10})

	for i := 0; i < 5; i++ {
		voiced, ended := d.Process(frame(5000))
		if !voiced {
			t.Errorf("frame %d: expected voiced", i)
		}
		if ended {
			t.Errorf("frame %d: utterance must not end during speech", i)
		}
	}
}

func TestDetectorSilence(t *testing.T) {
	d := NewDetector(DetectorConfig{EnergyThreshold: 500.0, SilenceFrames: 10})

	for i := 0; i < 15; i++ {
		voiced, ended := d.Process(frame(10))
		if voiced || ended {
			t.Errorf("frame %d: pure silence should never be voiced or end an utterance", i)
		}
	}
}

func TestDetectorEndpointing(t *testing.T) {
	d := NewDetector(DetectorConfig{EnergyThreshold: 500.0, SilenceFrames: 3})

	d.Process(frame(5000))
	if !d.Voiced() {
		t.Fatal("expected detector to enter utterance")
	}

	var endedAt int
	for i := 1; i <= 5; i++ {
		if _, ended := d.Process(frame(10)); ended {
			endedAt = i
			break
		}
	}
	if endedAt != 3 {
		t.Errorf("utterance ended after %d silent frames, want 3", endedAt)
	}
	if d.Voiced() {
		t.Error("detector must leave utterance after endpoint")
	}

	// Trailing silence inside the utterance keeps the stream voiced.
	d.Process(frame(5000))
	if voiced, _ := d.Process(frame(10)); !voiced {
		t.Error("single silent frame inside speech must stay voiced")
	}
}

func TestDetectorReset(t *testing.T) {
	d := NewDetector(DetectorConfig{EnergyThreshold: 500.0, SilenceFrames: 3})
	d.Process(frame(5000))
	d.Reset()
	if d.Voiced() {
		t.Error("reset must clear voiced state")
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %v, want 0", got)
	}
	if got := RMS(frame(0)); got != 0 {
		t.Errorf("RMS(zeroes) = %v, want 0", got)
	}
	if got := RMS(frame(1000)); got != 1000 {
		t.Errorf("RMS(constant 1000) = %v, want 1000", got)
	}
}

func TestSamples(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0xFF, 0xFF, 0x00, 0x80, 0x0A}
	samples := Samples(pcm)
	want := []int16{1, -1, -32768}
	if len(samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(samples), len(want))
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, samples[i], want[i])
		}
	}
}
