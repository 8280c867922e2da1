package script

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// EvalInt evaluates an integer Starlark expression, such as a time budget
// "2 * QUEUE + 10", with vars predeclared.
func EvalInt(expr string, vars map[string]int64) (value int64, err error) {
	thread := starlark.Thread{Name: "expr"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, val := range vars {
		pred[key] = starlark.MakeInt64(val)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}

	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = fmt.Errorf("%w: %q", ErrExpression, expr)
		return
	}

	value, ok = st_int.Int64()
	if !ok {
		err = fmt.Errorf("%w: %q", ErrExpression, expr)
	}
	return
}
