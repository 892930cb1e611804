package submit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFlags(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		params submitParams
		args   []interface{}
		err    string
	}{
		{
			name:   "no call",
			params: submitParams{module: "System"},
			err:    errMissingCall.Error(),
		},
		{
			name:   "no args",
			params: submitParams{module: "System", call: "remark"},
			args:   []interface{}{},
		},
		{
			name:   "numbers keep their precision",
			params: submitParams{module: "Balances", call: "transfer", rawArgs: `["0x01", 18446744073709551616]`},
			args:   []interface{}{"0x01", "18446744073709551616"},
		},
		{
			name:   "nested values",
			params: submitParams{module: "Utility", call: "batch", rawArgs: `[[1, {"value": 2}], true]`},
			args:   []interface{}{[]interface{}{"1", map[string]interface{}{"value": "2"}}, true},
		},
		{
			name:   "not an array",
			params: submitParams{module: "System", call: "remark", rawArgs: `{"a": 1}`},
			err:    "args must be a json array",
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			err := c.params.validateFlags()
			if c.err != "" {
				assert.ErrorContains(t, err, c.err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, c.args, c.params.args)
		})
	}
}

func TestResultOutput(t *testing.T) {
	t.Parallel()

	res := &Result{
		Account:  "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty",
		Call:     []byte{0x00, 0x01},
		Status:   "finalized",
		Statuses: []string{"ready", "finalized"},
	}

	out := res.GetOutput()
	assert.Contains(t, out, "[EXTRINSIC SUBMITTED]")
	assert.Contains(t, out, "0x0001")
	assert.Contains(t, out, "ready -> finalized")
}
