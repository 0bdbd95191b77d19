package component

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	errEmptyExpression = errors.New("component: expression must not be empty")
	errDetachedRule    = errors.New("component: compiled rule has no evaluator")
)

// EvaluationError reports a failed expression together with the component
// it ran for. Use errors.As to read it from errors returned by Extend,
// Instance.Get and Instance.Evaluate.
type EvaluationError struct {
	Engine    string
	Expr      string
	Component string
	// Computed names the computed property being evaluated. It is empty for
	// Instance.Evaluate calls.
	Computed string
	// CID is the constructor the expression belongs to. UID is the instance
	// it ran for, or -1 when compilation failed while deriving the
	// constructor.
	CID int
	UID int
	Err error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	subject := "expression"
	if e.Computed != "" {
		subject = fmt.Sprintf("computed %q", e.Computed)
	}
	expr := e.Expr
	if expr == "" {
		expr = "<empty>"
	}
	return fmt.Sprintf("component: %s: %s (%s) %q: %v", e.componentLabel(), subject, e.Engine, expr, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *EvaluationError) componentLabel() string {
	if e.Component == "" {
		return "<Anonymous>"
	}
	return e.Component
}

// wrapEvaluationError attaches engine, expression and component name to err.
// An EvaluationError already in the chain is filled in rather than wrapped
// again.
func wrapEvaluationError(engine, expr, component string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Component == "" {
			evalErr.Component = component
		}
		return err
	}
	return &EvaluationError{
		Engine:    engine,
		Expr:      expr,
		Component: component,
		CID:       -1,
		UID:       -1,
		Err:       err,
	}
}

// bindEvaluation records which constructor, instance and computed property
// an evaluation error belongs to. vm may be nil at compile time.
func bindEvaluation(err error, c *Constructor, vm *Instance, computed string) error {
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		return err
	}
	if c != nil {
		evalErr.CID = c.id
		if evalErr.Component == "" || evalErr.Component == "unknown" {
			evalErr.Component = c.options.Name()
		}
	}
	if vm != nil {
		evalErr.UID = vm.uid
	}
	if evalErr.Computed == "" {
		evalErr.Computed = computed
	}
	return err
}

// evaluationFields renders the component identity of err for log entries.
func evaluationFields(err error) []zap.Field {
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		return []zap.Field{zap.Error(err)}
	}
	fields := []zap.Field{
		zap.String("engine", evalErr.Engine),
		zap.Int("cid", evalErr.CID),
		zap.Error(evalErr.Err),
	}
	if evalErr.UID >= 0 {
		fields = append(fields, zap.Int("uid", evalErr.UID))
	}
	if evalErr.Computed != "" {
		fields = append(fields, zap.String("computed", evalErr.Computed))
	}
	return fields
}
