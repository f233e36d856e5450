// Package ladder provides a multi-mode resonant ladder filter
package ladder

// Mode selects the ladder's response
type Mode int

// The six responses, 12 dB and 24 dB per octave
const (
	LPF12 Mode = iota
	BPF12
	HPF12
	LPF24
	BPF24
	HPF24
)

// Modes lists every response in menu order
var Modes = [...]Mode{LPF12, BPF12, HPF12, LPF24, BPF24, HPF24}

var modeNames = [...]string{"LPF12", "BPF12", "HPF12", "LPF24", "BPF24", "HPF24"}

func (m Mode) String() string {
	if !m.Valid() {
		return "Unknown"
	}
	return modeNames[m]
}

// Valid reports whether m is one of the six responses
func (m Mode) Valid() bool {
	return m >= LPF12 && m <= HPF24
}

// mixes weights the ladder taps [input, stage1, stage2, stage3, stage4] for
// each response. The sum of every row except the low-pass ones is zero, so
// band- and high-pass responses reject DC.
var mixes = [...][5]float64{
	LPF12: {0, 0, 1, 0, 0},
	BPF12: {0, 0, -1, 1, 0},
	HPF12: {1, -2, 1, 0, 0},
	LPF24: {0, 0, 0, 0, 1},
	BPF24: {0, 0, 1, -2, 1},
	HPF24: {1, -4, 6, -4, 1},
}

// feedbackComp is the share of the input subtracted from the feedback path.
// It keeps the low- and band-pass passbands from collapsing as resonance rises.
var feedbackComp = [...]float64{
	LPF12: 0.5,
	BPF12: 0.5,
	HPF12: 0,
	LPF24: 0.5,
	BPF24: 0.5,
	HPF24: 0,
}
