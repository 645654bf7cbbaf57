package main

import (
	"bitbucket.org/Davydov/ancgeno/optimize"
)

// CallSummary is storing ancgeno run summary information.
type CallSummary struct {
	// Version stores ancgeno version.
	Version string `json:"version"`
	// CommandLine is an array storing binary name and all command-line parameters.
	CommandLine []string `json:"commandLine"`
	// Seed is the seed used for random number generation initialization.
	Seed int64 `json:"seed"`
	// NThreads is the number of processes used.
	NThreads int `json:"nThreads"`
	// Time is the computations time in seconds.
	TotalTime float64 `json:"time"`
	// Result is the command specific summary.
	Result interface{} `json:"result,omitempty"`
}

// InputSummary describes the data used.
type InputSummary struct {
	// Format is the input format.
	Format string `json:"format"`
	// Sites is the number of polymorphic sites used.
	Sites int `json:"sites"`
	// Dropped is the number of sites monomorphic in the modern
	// population which were removed.
	Dropped int `json:"dropped"`
	// Individuals is the number of ancient individuals.
	Individuals int `json:"individuals"`
}

// FitSummary stores the result of a single model fit.
type FitSummary struct {
	// Model is the model name.
	Model string `json:"model"`
	// AIC is the Akaike information criterion.
	AIC float64 `json:"aic"`
	// Optimizer is the optimizer summary.
	Optimizer optimize.Summary `json:"optimizer"`
}

// FitCommandSummary is the summary of the fit and curve commands.
type FitCommandSummary struct {
	Input InputSummary `json:"input"`
	Fit   FitSummary   `json:"fit"`
}

// LRTSummary is a likelihood ratio test of two nested models.
type LRTSummary struct {
	// H0 and H1 are the null and the alternative model names.
	H0 string `json:"h0"`
	H1 string `json:"h1"`
	// D is the likelihood ratio statistic.
	D float64 `json:"d"`
	// DF is the number of degrees of freedom.
	DF int `json:"df"`
	// PValue is the chi-squared p-value.
	PValue float64 `json:"pValue"`
}

// CompareSummary is the summary of the compare command.
type CompareSummary struct {
	Input InputSummary `json:"input"`
	Fits  []FitSummary `json:"fits"`
	// Best is the model with the minimal AIC.
	Best string     `json:"best"`
	LRT  LRTSummary `json:"lrt"`
}

// SimulateSummary is the summary of the simulate command.
type SimulateSummary struct {
	Sites       int     `json:"sites"`
	Modern      int     `json:"modern"`
	Individuals int     `json:"individuals"`
	Coverage    float64 `json:"coverage"`
	T1          float64 `json:"t1"`
	T2          float64 `json:"t2"`
}
