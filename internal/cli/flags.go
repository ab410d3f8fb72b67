package cli

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/pflag"
)

// thresholdValue is a pflag.Value for the merge threshold. It only rejects
// text that is not a finite number; the range check happens once options
// from all sources are merged, so a bad value from the config file or the
// environment fails the same way as a bad flag.
type thresholdValue float64

var _ pflag.Value = (*thresholdValue)(nil)

func newThresholdValue(def float64, p *float64) *thresholdValue {
	*p = def
	return (*thresholdValue)(p)
}

func (v *thresholdValue) String() string {
	return strconv.FormatFloat(float64(*v), 'f', -1, 64)
}

func (v *thresholdValue) Set(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%q is not a number", s)
	}
	*v = thresholdValue(f)
	return nil
}

func (v *thresholdValue) Type() string {
	return "seconds"
}
