// Package fixtures embeds scripted recognizer sequences for tests that
// drive the full pipeline without a camera or model. A script is a JSON
// list of steps; each step expands into one or more identical
// recognition results.
package fixtures

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/ayusman/mudra/internal/alphabet"
	"github.com/ayusman/mudra/internal/classify"
)

//go:embed testdata/scripts/*.json
var scriptsFS embed.FS

// step is one script entry. None means no hand in frame; Pinch selects
// the pinched pose. X and Y position the index fingertip; both zero
// means the neutral position.
type step struct {
	Class      string  `json:"class,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Frames     int     `json:"frames,omitempty"`
	X          float64 `json:"x,omitempty"`
	Y          float64 `json:"y,omitempty"`
	Pinch      bool    `json:"pinch,omitempty"`
	None       bool    `json:"none,omitempty"`
}

type script struct {
	Steps []step `json:"steps"`
}

// Load expands the named script (without the .json suffix) into its
// frame-by-frame result sequence.
func Load(name string) ([]classify.Result, error) {
	data, err := scriptsFS.ReadFile("testdata/scripts/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", name, err)
	}
	var sc script
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decode script %s: %w", name, err)
	}

	var results []classify.Result
	for i, st := range sc.Steps {
		res, err := st.result()
		if err != nil {
			return nil, fmt.Errorf("script %s step %d: %w", name, i, err)
		}
		frames := st.Frames
		if frames <= 0 {
			frames = 1
		}
		for n := 0; n < frames; n++ {
			results = append(results, res)
		}
	}
	return results, nil
}

// MustLoad is Load for test setup paths where a broken fixture should
// fail loudly.
func MustLoad(name string) []classify.Result {
	results, err := Load(name)
	if err != nil {
		panic(err)
	}
	return results
}

func (st step) result() (classify.Result, error) {
	if st.None {
		return classify.Result{}, nil
	}

	x, y := st.X, st.Y
	if x == 0 && y == 0 {
		x, y = 0.5, 0.4
	}
	var hand classify.HandLandmarks
	if st.Pinch {
		hand = classify.PinchedHandAt(x, y)
	} else {
		hand = classify.PointingHandAt(x, y)
	}
	res := classify.Result{Hands: []classify.HandLandmarks{hand}}

	if st.Class != "" {
		if !alphabet.IsClass(st.Class) {
			return classify.Result{}, fmt.Errorf("unknown class %q", st.Class)
		}
		conf := st.Confidence
		if conf == 0 {
			conf = 0.9
		}
		res.Probs = map[string]float64{st.Class: conf}
		res.TopClass = st.Class
		res.TopConf = conf
	}
	return res, nil
}
