package phash

import (
	"fmt"
	"strings"
)

// Algorithm selects how a reduced grid becomes bits. The set is closed;
// every switch over it is exhaustive.
type Algorithm int

const (
	// Gradient compares each sample to its right-hand neighbour. Default.
	Gradient Algorithm = iota
	// Mean compares each sample to the grid mean.
	Mean
	// VertGradient compares each sample to the one below it.
	VertGradient
	// DoubleGradient concatenates half-size horizontal and vertical gradients.
	DoubleGradient
	// Blockhash compares block means to their median.
	Blockhash
)

// DefaultAlgorithm is used when a request omits the algorithm.
const DefaultAlgorithm = Gradient

// Algorithms lists every algorithm in canonical order.
var Algorithms = []Algorithm{Mean, Gradient, VertGradient, DoubleGradient, Blockhash}

func (a Algorithm) String() string {
	switch a {
	case Mean:
		return "Mean"
	case Gradient:
		return "Gradient"
	case VertGradient:
		return "VertGradient"
	case DoubleGradient:
		return "DoubleGradient"
	case Blockhash:
		return "Blockhash"
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// Valid reports whether a is one of the defined algorithms.
func (a Algorithm) Valid() bool {
	return a >= Gradient && a <= Blockhash
}

// ParseAlgorithm maps a name onto an Algorithm, ignoring case.
func ParseAlgorithm(name string) (Algorithm, error) {
	for _, a := range Algorithms {
		if strings.EqualFold(name, a.String()) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown algorithm %q (want one of %s)", name, algorithmNames())
}

// MarshalText emits the canonical name.
func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid algorithm %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText parses a name via ParseAlgorithm.
func (a *Algorithm) UnmarshalText(text []byte) error {
	v, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func algorithmNames() string {
	names := make([]string, len(Algorithms))
	for i, a := range Algorithms {
		names[i] = a.String()
	}
	return strings.Join(names, ", ")
}
