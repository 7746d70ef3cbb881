package dataset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/askiada/churn-pipeline/internal/dataset"
)

func TestNormalizeNumber(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		in   string
		want string
	}{
		"empty":          {in: "", want: "0.0"},
		"blank":          {in: " ", want: "0.0"},
		"tabs":           {in: "\t \t", want: "0.0"},
		"text":           {in: "abc", want: "0.0"},
		"hexadecimal":    {in: "0x1F", want: "0.0"},
		"nan":            {in: "NaN", want: "0.0"},
		"infinity":       {in: "inf", want: "0.0"},
		"overflow":       {in: "1e400", want: "0.0"},
		"thousands sep":  {in: "1,889.5", want: "0.0"},
		"underscore":     {in: "1_000", want: "0.0"},
		"decimal":        {in: "29.85", want: "29.85"},
		"padded":         {in: " 1889.5 ", want: "1889.5"},
		"integral":       {in: "100", want: "100.0"},
		"negative":       {in: "-3", want: "-3.0"},
		"plus sign":      {in: "+2.5", want: "2.5"},
		"trailing point": {in: "7.", want: "7.0"},
		"exponent":       {in: "2.5e3", want: "2500.0"},
		"large":          {in: "1e20", want: "1e+20"},
		"small":          {in: "0.00001", want: "1e-05"},
		"zero":           {in: "0", want: "0.0"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := dataset.NormalizeNumber(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, dataset.NormalizeNumber(got), "normalizing twice must not change the value")
		})
	}
}

func TestNormalizeNumberRoundTrip(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"0.1", "29.85", "8684.8", "123456.789", "-0.5", "3", "1e-7", "6.02e23"} {
		want, ok := dataset.ParseNumber(in)
		assert.True(t, ok, in)

		got, ok := dataset.ParseNumber(dataset.NormalizeNumber(in))
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseNumberRejects(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "  ", "Infinity", "-inf", "nan", "0x10", "1e", "--1", "1.2.3", "12abc"} {
		_, ok := dataset.ParseNumber(in)
		assert.False(t, ok, in)
	}
}
