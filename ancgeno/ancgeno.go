/*

Ancgeno estimates the divergence of an ancient population from
ancient genotypes (or sequencing reads) and the allele frequencies of
a modern population.

The basic usage looks like this:

	ancgeno fit sites.txt

, this will fit the split model to called genotypes using LBFGS-B.
Other models and input formats can be selected:

	ancgeno fit -model reads -format reads reads.txt

The single lineage, the split and the mixture models can be compared:

	ancgeno compare sites.txt

To see all the options run:

	ancgeno -h

*/
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/op/go-logging"
	"gopkg.in/alecthomas/kingpin.v2"
)

// These three variables are set during the compilation.
var githash = ""
var gitbranch = ""
var buildstamp = ""
var version = fmt.Sprintf("branch: %s, revision: %s, build time: %s", gitbranch, githash, buildstamp)

// Logger settings.
var log = logging.MustGetLogger("ancgeno")
var formatter = logging.MustStringFormatter(`%{message}`)

// packages with loggers
var loggers = []string{"ancgeno", "optimize", "amodel", "agg", "ctmc", "gtlike", "simulate"}

// command-line options
var (
	// application
	app = kingpin.New("ancgeno", "ancient genotypes population divergence estimator").Version(version)

	// global options
	configF    = app.Flag("config", "YAML configuration file with parameter ranges and optimizer settings").ExistingFile()
	nThreads   = app.Flag("nt", "number of threads to use").Int()
	seed       = app.Flag("seed", "random generator seed, default time based").Default("-1").Int64()
	cpuProfile = app.Flag("cpuprofile", "write cpu profile to file").String()
	outLogF    = app.Flag("log", "write log to a file").String()
	logLevel   = app.Flag("loglevel", "set loglevel "+
		"('critical', 'error', 'warning', 'notice', 'info', 'debug')").
		Default("notice").
		Enum("critical", "error", "warning", "notice", "info", "debug")
	jsonF = app.Flag("json", "write json output to a file").String()

	// optimizer options
	method = app.Flag("method", "optimization method to use "+
		"(lbfgsb: limited-memory Broyden–Fletcher–Goldfarb–Shanno with bounding constraints, "+
		"bfgs: BFGS without constraints, "+
		"simplex: downhill simplex, "+
		"none: just compute likelihood, no optimization"+
		"), lbfgsb by default").Enum("lbfgsb", "bfgs", "simplex", "none")
	iterations = app.Flag("iter", "number of iterations").Int()
	report     = app.Flag("report", "report every N iterations").Default("10").Int()
	outF       = app.Flag("out", "write optimization trajectory to a file").String()
	randomize  = app.Flag("randomize", "use uniformly distributed random starting point").Bool()

	// fit command
	fitCmd    = app.Command("fit", "fit a model")
	fitModel  = fitCmd.Flag("model", "model (anc, split, mixture, gl or reads)").Default("split").Enum(modelNames...)
	fitFormat = fitCmd.Flag("format", "input format (genotype, gl or reads)").Default("genotype").Enum(formatNames...)
	fitStartF = fitCmd.Flag("start", "read start position from the trajectory or JSON file").ExistingFile()
	fitInput  = fitCmd.Arg("input", "input sites").Required().ExistingFile()

	// compare command
	cmpCmd    = app.Command("compare", "compare single lineage, split and mixture models")
	cmpFormat = cmpCmd.Flag("format", "input format (genotype, gl or reads)").Default("genotype").Enum(formatNames...)
	cmpInput  = cmpCmd.Arg("input", "input sites").Required().ExistingFile()

	// simulate command
	simCmd         = app.Command("simulate", "simulate sites from the split model")
	simSites       = simCmd.Flag("sites", "number of sites").Default("1000").Int()
	simModern      = simCmd.Flag("modern", "number of modern haploids").Default("1000").Int()
	simIndividuals = simCmd.Flag("individuals", "number of ancient diploid individuals").Default("1").Int()
	simCoverage    = simCmd.Flag("coverage", "mean read depth, genotypes are written if zero").Default("0").Float64()
	simT1          = simCmd.Flag("t1", "ancient sample to split time (coalescent units), overrides demography").Float64()
	simT2          = simCmd.Flag("t2", "split to present time (coalescent units), overrides demography").Float64()
	simOutput      = simCmd.Flag("output", "write sites to a file instead of stdout").String()

	// curve command
	curveCmd    = app.Command("curve", "fit a model and write observed and fitted heterozygosity")
	curveModel  = curveCmd.Flag("model", "model (anc, split or mixture)").Default("split").Enum("anc", "split", "mixture")
	curveFormat = curveCmd.Flag("format", "input format (genotype, gl or reads)").Default("genotype").Enum(formatNames...)
	curvePlot   = curveCmd.Flag("plot", "render the curve to a PNG file").String()
	curveInput  = curveCmd.Arg("input", "input sites").Required().ExistingFile()
)

// setupLogging configures the logging backend and levels.
func setupLogging() (closer func()) {
	logging.SetFormatter(formatter)

	closer = func() {}
	var backend *logging.LogBackend
	if *outLogF != "" {
		f, err := os.OpenFile(*outLogF, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("Error creating log file:", err)
		}
		closer = func() { f.Close() }
		backend = logging.NewLogBackend(f, "", 0)
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	}
	logging.SetBackend(backend)

	level, err := logging.LogLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	for _, name := range loggers {
		logging.SetLevel(level, name)
	}
	return
}

// writeJSON writes the summary to the json file if requested.
func writeJSON(summary interface{}) {
	if *jsonF == "" {
		return
	}
	j, err := json.Marshal(summary)
	if err != nil {
		log.Error(err)
		return
	}
	log.Debug(string(j))
	f, err := os.Create(*jsonF)
	if err != nil {
		log.Error("Error creating json output file:", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(j); err != nil {
		log.Error(err)
	}
}

func main() {
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	closeLog := setupLogging()
	defer closeLog()

	// print revision
	log.Info(version)

	// print commandline
	log.Info("Command line:", os.Args)

	if *seed == -1 {
		*seed = time.Now().UnixNano()
		log.Debug("Random seed from time")
	}
	log.Infof("Random seed=%v", *seed)

	runtime.GOMAXPROCS(*nThreads)

	effectiveNThreads := runtime.GOMAXPROCS(0)
	log.Infof("Using threads: %d.", effectiveNThreads)

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	conf, err := loadConfig(*configF)
	if err != nil {
		log.Fatal(err)
	}

	startTime := time.Now()
	summary := &CallSummary{
		Version:     version,
		CommandLine: os.Args,
		Seed:        *seed,
		NThreads:    effectiveNThreads,
	}

	switch cmd {
	case fitCmd.FullCommand():
		summary.Result = runFit(conf)
	case cmpCmd.FullCommand():
		summary.Result = runCompare(conf)
	case simCmd.FullCommand():
		summary.Result = runSimulate(conf)
	case curveCmd.FullCommand():
		summary.Result = runCurve(conf)
	}

	deltaT := time.Since(startTime)
	log.Noticef("Running time: %v", deltaT)
	summary.TotalTime = deltaT.Seconds()

	writeJSON(summary)
}

// watchedSignals stop the optimization gracefully.
var watchedSignals = []os.Signal{syscall.SIGUSR2}
