package amodel

import (
	"fmt"
	"math"

	"bitbucket.org/Davydov/ancgeno/agg"
	"bitbucket.org/Davydov/ancgeno/check"
	"bitbucket.org/Davydov/ancgeno/drift"
	"bitbucket.org/Davydov/ancgeno/gtlike"
	"bitbucket.org/Davydov/ancgeno/optimize"
	"bitbucket.org/Davydov/ancgeno/reads"
)

// Range is a parameter starting value with box constraints.
type Range struct {
	Start float64 `json:"start" yaml:"start"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
}

// Validate checks that the start is within boundaries.
func (r Range) Validate() error {
	if !(r.Min <= r.Start && r.Start <= r.Max) {
		return fmt.Errorf("%w: start %v is not in [%v, %v]", check.ErrConfig, r.Start, r.Min, r.Max)
	}
	return nil
}

// Default parameter ranges.
var (
	AncRanges = map[string]Range{
		"t": {Start: 0.5, Min: 1e-4, Max: 1000},
	}
	SplitRanges = map[string]Range{
		"t1": {Start: 0.5, Min: 1e-4, Max: 100},
		"t2": {Start: 0.5, Min: 1e-4, Max: 100},
	}
	MixtureRanges = map[string]Range{
		"t1": {Start: 0.5, Min: 1e-4, Max: 100},
		"t2": {Start: 0.5, Min: 1e-4, Max: 100},
		"t3": {Start: 0.5, Min: 1e-4, Max: 100},
		"p":  {Start: 0.5, Min: 0, Max: 1},
	}
)

// Model is a maximizable model of ancient data.
type Model interface {
	optimize.Optimizable
	// Name is the model name.
	Name() string
	// Fitted is the expected heterozygote proportion for every
	// frequency at the current parameters.
	Fitted(freqs []float64) []float64
}

// SetRanges sets starting values and boundaries of parameters by
// name. Names not present in ranges are left untouched.
func SetRanges(m optimize.Optimizable, ranges map[string]Range) error {
	par := m.GetFloatParameters()
	known := make(map[string]bool, len(par))
	for _, p := range par {
		known[p.Name()] = true
		r, ok := ranges[p.Name()]
		if !ok {
			continue
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("parameter %s: %w", p.Name(), err)
		}
		p.SetMin(r.Min)
		p.SetMax(r.Max)
		p.Set(r.Start)
	}
	for name := range ranges {
		if !known[name] {
			return fmt.Errorf("%w: unknown parameter %s", check.ErrConfig, name)
		}
	}
	return nil
}

// lnL converts an evaluation error into -Inf, so optimizers treat
// the point as infeasible.
func lnL(name string, l float64, err error) float64 {
	if err != nil {
		log.Debugf("%s: %v", name, err)
		return math.Inf(-1)
	}
	return l
}

// counts are the data of the aggregate models.
type counts struct {
	freqs, het, hom []float64
}

func newCounts(freqs, het, hom []float64) (counts, error) {
	if err := checkCounts(freqs, het, hom); err != nil {
		return counts{}, err
	}
	return counts{freqs: freqs, het: het, hom: hom}, nil
}

// FromCounts returns the frequencies, heterozygote and derived
// homozygote counts used by the aggregate models.
func FromCounts(c *agg.Counts) (freqs, het, hom []float64) {
	return c.Freqs, c.Het, c.Der()
}

// Anc is the single lineage model.
type Anc struct {
	counts
	drift.AncParams
	parameters optimize.FloatParameters
}

// NewAnc creates the single lineage model with default ranges.
func NewAnc(freqs, het, hom []float64) (*Anc, error) {
	c, err := newCounts(freqs, het, hom)
	if err != nil {
		return nil, err
	}
	m := &Anc{counts: c}
	m.setupParameters()
	return m, SetRanges(m, AncRanges)
}

func (m *Anc) setupParameters() {
	m.parameters = nil
	m.addParameters(optimize.BasicFloatParameterGenerator)
}

func (m *Anc) addParameters(nfp optimize.NewFloatParameter) {
	t := nfp(&m.T, "t")
	t.SetMin(AncRanges["t"].Min)
	t.SetMax(AncRanges["t"].Max)
	m.parameters.Append(t)
}

func (m *Anc) Name() string {
	return "anc"
}

func (m *Anc) GetFloatParameters() optimize.FloatParameters {
	return m.parameters
}

// Copy creates a copy sharing the data. Parameter boundaries are
// copied.
func (m *Anc) Copy() optimize.Optimizable {
	newM := &Anc{
		counts:    m.counts,
		AncParams: m.AncParams,
	}
	newM.setupParameters()
	copyRanges(newM.parameters, m.parameters)
	return newM
}

func (m *Anc) Likelihood() float64 {
	l, err := AncLnL(m.AncParams, m.freqs, m.het, m.hom)
	return lnL(m.Name(), l, err)
}

func (m *Anc) Fitted(freqs []float64) []float64 {
	return drift.HetAncCurve(freqs, m.AncParams)
}

// Split is the population split model.
type Split struct {
	counts
	drift.SplitParams
	parameters optimize.FloatParameters
}

// NewSplit creates the split model with default ranges.
func NewSplit(freqs, het, hom []float64) (*Split, error) {
	c, err := newCounts(freqs, het, hom)
	if err != nil {
		return nil, err
	}
	m := &Split{counts: c}
	m.setupParameters()
	return m, SetRanges(m, SplitRanges)
}

func (m *Split) setupParameters() {
	m.parameters = addSplitParameters(nil, optimize.BasicFloatParameterGenerator, &m.SplitParams)
}

func (m *Split) Name() string {
	return "split"
}

func (m *Split) GetFloatParameters() optimize.FloatParameters {
	return m.parameters
}

func (m *Split) Copy() optimize.Optimizable {
	newM := &Split{
		counts:      m.counts,
		SplitParams: m.SplitParams,
	}
	newM.setupParameters()
	copyRanges(newM.parameters, m.parameters)
	return newM
}

func (m *Split) Likelihood() float64 {
	l, err := SplitLnL(m.SplitParams, m.freqs, m.het, m.hom)
	return lnL(m.Name(), l, err)
}

func (m *Split) Fitted(freqs []float64) []float64 {
	return drift.HetSplitCurve(freqs, m.SplitParams)
}

// Mixture is the two component mixture model.
type Mixture struct {
	counts
	drift.MixtureParams
	parameters optimize.FloatParameters
}

// NewMixture creates the mixture model with default ranges.
func NewMixture(freqs, het, hom []float64) (*Mixture, error) {
	c, err := newCounts(freqs, het, hom)
	if err != nil {
		return nil, err
	}
	m := &Mixture{counts: c}
	m.setupParameters()
	return m, SetRanges(m, MixtureRanges)
}

func (m *Mixture) setupParameters() {
	nfp := optimize.BasicFloatParameterGenerator
	m.parameters = nil
	for _, v := range []struct {
		v    *float64
		name string
	}{{&m.T1, "t1"}, {&m.T2, "t2"}, {&m.T3, "t3"}, {&m.P, "p"}} {
		par := nfp(v.v, v.name)
		par.SetMin(MixtureRanges[v.name].Min)
		par.SetMax(MixtureRanges[v.name].Max)
		m.parameters.Append(par)
	}
}

func (m *Mixture) Name() string {
	return "mixture"
}

func (m *Mixture) GetFloatParameters() optimize.FloatParameters {
	return m.parameters
}

func (m *Mixture) Copy() optimize.Optimizable {
	newM := &Mixture{
		counts:        m.counts,
		MixtureParams: m.MixtureParams,
	}
	newM.setupParameters()
	copyRanges(newM.parameters, m.parameters)
	return newM
}

func (m *Mixture) Likelihood() float64 {
	l, err := MixtureLnL(m.MixtureParams, m.freqs, m.het, m.hom)
	return lnL(m.Name(), l, err)
}

func (m *Mixture) Fitted(freqs []float64) []float64 {
	return drift.MixtureHetCurve(freqs, m.MixtureParams)
}

// GL is the split model of per-site genotype likelihoods.
type GL struct {
	freqs []float64
	gl    [][3]float64
	drift.SplitParams
	parameters optimize.FloatParameters
}

// NewGL creates the genotype likelihood model with default ranges.
func NewGL(freqs []float64, gl [][3]float64) (*GL, error) {
	if err := check.SameLength(len(freqs), []string{"genotype likelihoods"}, len(gl)); err != nil {
		return nil, err
	}
	if err := check.Frequencies(freqs); err != nil {
		return nil, err
	}
	m := &GL{freqs: freqs, gl: gl}
	m.setupParameters()
	return m, SetRanges(m, SplitRanges)
}

func (m *GL) setupParameters() {
	m.parameters = addSplitParameters(nil, optimize.BasicFloatParameterGenerator, &m.SplitParams)
}

func (m *GL) Name() string {
	return "gl"
}

func (m *GL) GetFloatParameters() optimize.FloatParameters {
	return m.parameters
}

func (m *GL) Copy() optimize.Optimizable {
	newM := &GL{
		freqs:       m.freqs,
		gl:          m.gl,
		SplitParams: m.SplitParams,
	}
	newM.setupParameters()
	copyRanges(newM.parameters, m.parameters)
	return newM
}

func (m *GL) Likelihood() float64 {
	l, err := GLLnL(m.SplitParams, m.freqs, m.gl)
	return lnL(m.Name(), l, err)
}

func (m *GL) Fitted(freqs []float64) []float64 {
	return drift.HetSplitCurve(freqs, m.SplitParams)
}

// Reads is the split model of sequencing reads of several ancient
// individuals.
type Reads struct {
	mg    *gtlike.Marginalizer
	freqs []float64
	sites [][]reads.Reads
	drift.SplitParams
	parameters optimize.FloatParameters
}

// NewReads creates the read model with default ranges. sites[i] are
// the reads of every individual at site i.
func NewReads(freqs []float64, sites [][]reads.Reads) (*Reads, error) {
	if len(sites) == 0 {
		return nil, fmt.Errorf("%w: no sites", check.ErrConfig)
	}
	if err := check.SameLength(len(freqs), []string{"sites"}, len(sites)); err != nil {
		return nil, err
	}
	if err := check.Frequencies(freqs); err != nil {
		return nil, err
	}
	mg, err := gtlike.New(len(sites[0]))
	if err != nil {
		return nil, err
	}
	m := &Reads{mg: mg, freqs: freqs, sites: sites}
	m.setupParameters()
	return m, SetRanges(m, SplitRanges)
}

func (m *Reads) setupParameters() {
	m.parameters = addSplitParameters(nil, optimize.BasicFloatParameterGenerator, &m.SplitParams)
}

func (m *Reads) Name() string {
	return "reads"
}

func (m *Reads) GetFloatParameters() optimize.FloatParameters {
	return m.parameters
}

func (m *Reads) Copy() optimize.Optimizable {
	newM := &Reads{
		mg:          m.mg,
		freqs:       m.freqs,
		sites:       m.sites,
		SplitParams: m.SplitParams,
	}
	newM.setupParameters()
	copyRanges(newM.parameters, m.parameters)
	return newM
}

func (m *Reads) Likelihood() float64 {
	l, err := m.mg.LnL(m.SplitParams, m.freqs, m.sites)
	return lnL(m.Name(), l, err)
}

func (m *Reads) Fitted(freqs []float64) []float64 {
	return drift.HetSplitCurve(freqs, m.SplitParams)
}

func addSplitParameters(par optimize.FloatParameters, nfp optimize.NewFloatParameter, p *drift.SplitParams) optimize.FloatParameters {
	t1 := nfp(&p.T1, "t1")
	t1.SetMin(SplitRanges["t1"].Min)
	t1.SetMax(SplitRanges["t1"].Max)
	t2 := nfp(&p.T2, "t2")
	t2.SetMin(SplitRanges["t2"].Min)
	t2.SetMax(SplitRanges["t2"].Max)
	par.Append(t1)
	par.Append(t2)
	return par
}

func copyRanges(dst, src optimize.FloatParameters) {
	for i, p := range src {
		dst[i].SetMin(p.GetMin())
		dst[i].SetMax(p.GetMax())
	}
}
