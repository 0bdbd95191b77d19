//go:build !js_eval

package component

// NewJSEvaluator is unavailable without the js_eval build tag. Computed
// properties declaring the "js" engine fail to install with ErrNoEvaluator.
func NewJSEvaluator(...EvaluatorOption) Evaluator {
	return nil
}

func jsEvaluatorAvailable() bool {
	return false
}
