package optimize

// None is an optimizer which computes initial value and exits.
type None struct {
	BaseOptimizer
}

// NewNone creates an optimizer which computes initial likelihood only.
func NewNone() *None {
	return &None{
		BaseOptimizer: BaseOptimizer{
			name: "none",
		},
	}
}

// Run computes the likelihood of the current parameters.
func (n *None) Run(iterations int) {
	n.start()
	n.update(n.Likelihood())
	n.PrintLine(n.parameters, n.l)
	n.finish()
}
