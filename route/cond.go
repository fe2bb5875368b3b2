package route

import (
	"net/url"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

func condEnv(u *url.URL, params map[string]string) map[string]any {
	if params == nil {
		params = map[string]string{}
	}
	return map[string]any{
		"url":      u.String(),
		"protocol": u.Scheme,
		"host":     u.Hostname(),
		"pathname": u.Path,
		"search":   u.RawQuery,
		"params":   params,
	}
}

func compileWhen(src string) (*vm.Program, error) {
	return expr.Compile(src,
		expr.Env(condEnv(&url.URL{}, nil)),
		expr.AsBool())
}

func evalWhen(prog *vm.Program, u *url.URL, params map[string]string) bool {
	if prog == nil {
		return true
	}
	out, err := expr.Run(prog, condEnv(u, params))
	if err != nil {
		return false
	}
	b, ok := out.(bool)
	return ok && b
}
