package optimize

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/op/go-logging"
	"golang.org/x/exp/rand"
)

func init() {
	logging.SetLevel(logging.WARNING, "optimize")
}

// paraboloid has the maximum 0 at (1, 2).
type paraboloid struct {
	x, y       float64
	parameters FloatParameters
}

func newParaboloid(x, y float64) *paraboloid {
	p := &paraboloid{x: x, y: y}
	p.setupParameters()
	return p
}

func (p *paraboloid) setupParameters() {
	p.parameters = nil
	x := NewBasicFloatParameter(&p.x, "x")
	x.SetMin(-5)
	x.SetMax(5)
	y := NewBasicFloatParameter(&p.y, "y")
	y.SetMin(0)
	y.SetMax(10)
	p.parameters.Append(x)
	p.parameters.Append(y)
}

func (p *paraboloid) GetFloatParameters() FloatParameters {
	return p.parameters
}

func (p *paraboloid) Copy() Optimizable {
	return newParaboloid(p.x, p.y)
}

func (p *paraboloid) Likelihood() float64 {
	return -(p.x-1)*(p.x-1) - 2*(p.y-2)*(p.y-2)
}

func checkOptimum(tst *testing.T, opt Optimizer, p *paraboloid) {
	if math.Abs(p.x-1) > 1e-3 || math.Abs(p.y-2) > 1e-3 {
		tst.Errorf("Wrong optimum: x=%v, y=%v", p.x, p.y)
	}
	if opt.GetMaxL() < -1e-6 {
		tst.Error("Wrong maximum likelihood:", opt.GetMaxL())
	}
	s := opt.Summary()
	if s.MaxLnL != opt.GetMaxL() || len(s.MaxLParameters) != 2 {
		tst.Error("Wrong summary:", s)
	}
	if s.LikelihoodCalls == 0 {
		tst.Error("No likelihood calls recorded")
	}
}

func TestLBFGSB(tst *testing.T) {
	p := newParaboloid(-3, 7)
	opt := NewLBFGSB()
	opt.Quiet = true
	opt.SetOptimizable(p)
	opt.Run(1000)
	checkOptimum(tst, opt, p)
}

func TestBFGS(tst *testing.T) {
	p := newParaboloid(-3, 7)
	opt := NewBFGS()
	opt.Quiet = true
	opt.SetOptimizable(p)
	opt.Run(1000)
	checkOptimum(tst, opt, p)
}

func TestSimplex(tst *testing.T) {
	p := newParaboloid(0.5, 0.5)
	opt := NewDS()
	opt.Quiet = true
	opt.SetOptimizable(p)
	opt.Run(10000)
	checkOptimum(tst, opt, p)
}

func TestSimplexAtBoundary(tst *testing.T) {
	p := newParaboloid(5, 10)
	opt := NewDS()
	opt.Quiet = true
	opt.SetOptimizable(p)
	opt.Run(10000)
	checkOptimum(tst, opt, p)
}

func TestNone(tst *testing.T) {
	p := newParaboloid(1, 3)
	opt := NewNone()
	opt.SetOptimizable(p)
	opt.Run(100)
	if opt.GetMaxL() != -2 {
		tst.Error("Wrong likelihood:", opt.GetMaxL())
	}
	if p.x != 1 || p.y != 3 {
		tst.Error("Parameters changed:", p.x, p.y)
	}
}

func TestTrajectory(tst *testing.T) {
	var b bytes.Buffer
	p := newParaboloid(0, 0)
	opt := NewNone()
	opt.SetTrajectoryOutput(&b)
	opt.SetOptimizable(p)
	opt.Run(1)
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 2 {
		tst.Fatal("Expected header and one line, got", lines)
	}
	if lines[0] != "iteration\tlikelihood\tx\ty" {
		tst.Error("Wrong header:", lines[0])
	}
	q := newParaboloid(3, 3)
	par := q.GetFloatParameters()
	if err := par.ReadLine(lines[1]); err != nil {
		tst.Fatal("Error:", err)
	}
	if q.x != 0 || q.y != 0 {
		tst.Error("Wrong values read from trajectory:", q.x, q.y)
	}
}

func TestRandomize(tst *testing.T) {
	p := newParaboloid(0, 0)
	par := p.GetFloatParameters()
	for i := 0; i < 100; i++ {
		par.Randomize(rand.NewSource(uint64(i)))
		if !par.InRange() {
			tst.Error("Randomized parameters out of range:", par.ValuesString())
		}
	}
}

func TestSetFromMap(tst *testing.T) {
	p := newParaboloid(0, 0)
	par := p.GetFloatParameters()
	if err := par.SetFromMap(map[string]float64{"y": 4}); err != nil {
		tst.Error("Error:", err)
	}
	if p.y != 4 || p.x != 0 {
		tst.Error("Wrong values:", p.x, p.y)
	}
	if err := par.SetFromMap(map[string]float64{"z": 4}); err == nil {
		tst.Error("Expected error for unknown parameter")
	}
	if m := par.Map(); m["x"] != 0 || m["y"] != 4 {
		tst.Error("Wrong map:", m)
	}
}
