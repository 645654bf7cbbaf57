package agg

import "github.com/op/go-logging"

// log is a global logging variable.
var log = logging.MustGetLogger("agg")
