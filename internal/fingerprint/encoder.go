package fingerprint

import "hash/fnv"

// defaultDimensions is the vector width of the built-in encoder.
const defaultDimensions = 256

// DefaultLoader returns a loader for the built-in hashed n-gram encoder:
// character trigrams of the normalized text, FNV-1a hashed into a fixed
// 256-dimension count vector. Fully deterministic and dependency-free, so
// the embedding policy is exercisable without an external model runtime.
// A model-backed Loader can be substituted without touching the Engine.
func DefaultLoader() Loader {
	return loaderFunc(func() (Encoder, error) {
		return &ngramEncoder{dims: defaultDimensions}, nil
	})
}

// loaderFunc adapts a function to the Loader interface.
type loaderFunc func() (Encoder, error)

func (f loaderFunc) Load() (Encoder, error) { return f() }

type ngramEncoder struct {
	dims int
}

func (e *ngramEncoder) Encode(text string) ([]int64, error) {
	vec := make([]int64, e.dims)
	runes := []rune(text)
	for i := 0; i+3 <= len(runes); i++ {
		h := fnv.New32a()
		h.Write([]byte(string(runes[i : i+3])))
		vec[int(h.Sum32())%e.dims]++
	}
	return vec, nil
}

func (e *ngramEncoder) Close() error { return nil }
