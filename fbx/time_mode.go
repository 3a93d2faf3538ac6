package fbx

import "math"

// TimeMode is the GlobalSettings TimeMode enum.
type TimeMode int

const (
	TimeModeDefault TimeMode = iota
	TimeModeFrames120
	TimeModeFrames100
	TimeModeFrames60
	TimeModeFrames50
	TimeModeFrames48
	TimeModeFrames30
	TimeModeFrames30Drop
	TimeModeNTSCDropFrame
	TimeModeNTSCFullFrame
	TimeModePAL
	TimeModeFrames24
	TimeModeFrames1000
	TimeModeFilmFullFrame
	TimeModeCustom
	TimeModeFrames96
	TimeModeFrames72
	TimeModeFrames59dot94
	TimeModeFrames119dot88
)

var timeModeFrameRates = map[TimeMode]float64{
	TimeModeDefault:        30,
	TimeModeFrames120:      120,
	TimeModeFrames100:      100,
	TimeModeFrames60:       60,
	TimeModeFrames50:       50,
	TimeModeFrames48:       48,
	TimeModeFrames30:       30,
	TimeModeFrames30Drop:   30,
	TimeModeNTSCDropFrame:  29.97002617,
	TimeModeNTSCFullFrame:  29.97002617,
	TimeModePAL:            25,
	TimeModeFrames24:       24,
	TimeModeFrames1000:     1000,
	TimeModeFilmFullFrame:  23.976,
	TimeModeFrames96:       96,
	TimeModeFrames72:       72,
	TimeModeFrames59dot94:  59.94,
	TimeModeFrames119dot88: 119.88,
}

// FrameRateForTimeMode returns the frame rate of a fixed time mode.
// ok is false for TimeModeCustom and unknown values.
func FrameRateForTimeMode(mode TimeMode) (rate float64, ok bool) {
	rate, ok = timeModeFrameRates[mode]
	return
}

// TimeModeForFrameRate returns the first fixed time mode running at rate,
// or TimeModeCustom if there is none.
func TimeModeForFrameRate(rate float64) TimeMode {
	for mode := TimeModeFrames120; mode <= TimeModeFrames119dot88; mode++ {
		if r, ok := timeModeFrameRates[mode]; ok && math.Abs(r-rate) < 1e-8 {
			return mode
		}
	}
	return TimeModeCustom
}
