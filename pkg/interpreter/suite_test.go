package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sicp/interpreter-go/pkg/parser"
)

// testSequence is evaluated in order against one root environment. Each step
// expects either the displayed result or an error whose message is err.
type testSequence []struct {
	expr   string
	result string
	err    string
}

type testSuite []struct {
	name string
	seq  testSequence
}

func runSuite(t *testing.T, suite testSuite) {
	t.Helper()
	for _, tc := range suite {
		t.Run(tc.name, func(t *testing.T) {
			env := NewRootEnvironment()
			for i, step := range tc.seq {
				forms, err := parser.ParseAll(step.expr)
				require.NoError(t, err, "step %d: %s", i, step.expr)
				require.Len(t, forms, 1, "step %d: %s", i, step.expr)
				val, err := Eval(forms[0], env)
				if step.err != "" {
					if assert.Error(t, err, "step %d: %s", i, step.expr) {
						assert.Equal(t, step.err, err.Error(), "step %d: %s", i, step.expr)
					}
					continue
				}
				if assert.NoError(t, err, "step %d: %s", i, step.expr) {
					assert.Equal(t, step.result, val.String(), "step %d: %s", i, step.expr)
				}
				assert.Equal(t, 1, env.Depth(), "step %d: frame leaked", i)
			}
		})
	}
}
