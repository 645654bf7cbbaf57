package optimize

import (
	"fmt"
	"strconv"
	"strings"
)

// ReadFloats converts a whitespace-separated line into floats. The
// error names the first field which is not a number.
func ReadFloats(s string) ([]float64, error) {
	fields := strings.Fields(s)
	res := make([]float64, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %q is not a number", i+1, f)
		}
		res[i] = x
	}
	return res, nil
}
