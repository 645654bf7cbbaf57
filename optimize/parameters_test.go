package optimize

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestParametersJSON(tst *testing.T) {
	p := newParaboloid(1.25, 1e-7)
	par := p.GetFloatParameters()
	j, err := json.Marshal(par)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	// parameter order is kept
	if string(j) != `{"x":1.25,"y":1e-07}` {
		tst.Error("Wrong JSON:", string(j))
	}

	fn := filepath.Join(tst.TempDir(), "start.json")
	if err := os.WriteFile(fn, []byte(`{"y": 3.5}`), 0644); err != nil {
		tst.Fatal("Error:", err)
	}
	if err := par.ReadFromJSON(fn); err != nil {
		tst.Fatal("Error:", err)
	}
	if p.x != 1.25 || p.y != 3.5 {
		tst.Error("Wrong values from JSON:", p.x, p.y)
	}

	if err := json.Unmarshal([]byte(`{"z": 1}`), &par); err == nil {
		tst.Error("Expected error for unknown parameter")
	}
}

func TestReadFloats(tst *testing.T) {
	v, err := ReadFloats(" 1\t-2.5  3e-3 ")
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if len(v) != 3 || v[0] != 1 || v[1] != -2.5 || v[2] != 3e-3 {
		tst.Error("Wrong values:", v)
	}
	if _, err := ReadFloats("1 a 2"); err == nil {
		tst.Error("Expected error")
	}
	if v, err := ReadFloats(""); err != nil || len(v) != 0 {
		tst.Error("Expected no values:", v, err)
	}
}
