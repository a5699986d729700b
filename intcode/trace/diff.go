package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// ReadJSONL parses a JSONL trace as written by JSONLWriter.
func ReadJSONL(r io.Reader) ([]Step, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	var steps []Step
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var s Step
		if err := json.Unmarshal(sc.Bytes(), &s); err != nil {
			return nil, fmt.Errorf("trace line %d: %w", line, err)
		}
		steps = append(steps, s)
	}
	return steps, sc.Err()
}

func ReadJSONLFile(path string) ([]Step, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSONL(f)
}

// Divergence is the first position at which two traces disagree. Left or
// Right is nil when that trace ended first.
type Divergence struct {
	Index int
	Left  *Step
	Right *Step
	Delta string
}

func (d *Divergence) String() string {
	switch {
	case d.Left == nil:
		return fmt.Sprintf("step %d: left trace ended, right continues at pc %d", d.Index, d.Right.PC)
	case d.Right == nil:
		return fmt.Sprintf("step %d: right trace ended, left continues at pc %d", d.Index, d.Left.PC)
	}
	return fmt.Sprintf("step %d (pc %d / %d):\n%s", d.Index, d.Left.PC, d.Right.PC, d.Delta)
}

// Diff walks both traces in lockstep and reports the first step whose JSON
// form differs. It returns nil when the traces are identical.
func Diff(left, right []Step, coloring bool) (*Divergence, error) {
	differ := gojsondiff.New()
	n := min(len(left), len(right))
	for i := 0; i < n; i++ {
		a, err := json.Marshal(&left[i])
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(&right[i])
		if err != nil {
			return nil, err
		}
		delta, err := differ.Compare(a, b)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		if !delta.Modified() {
			continue
		}
		var leftObj map[string]interface{}
		if err := json.Unmarshal(a, &leftObj); err != nil {
			return nil, err
		}
		text, err := formatter.NewAsciiFormatter(leftObj, formatter.AsciiFormatterConfig{
			ShowArrayIndex: true,
			Coloring:       coloring,
		}).Format(delta)
		if err != nil {
			return nil, fmt.Errorf("step %d: format diff: %w", i, err)
		}
		return &Divergence{Index: i, Left: &left[i], Right: &right[i], Delta: text}, nil
	}
	switch {
	case len(left) < len(right):
		return &Divergence{Index: n, Right: &right[n]}, nil
	case len(right) < len(left):
		return &Divergence{Index: n, Left: &left[n]}, nil
	}
	return nil, nil
}
