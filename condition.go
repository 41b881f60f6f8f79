package route

import (
	"net/http"
	"slices"
)

// Outcome is the result of checking a Condition.
type Outcome struct {
	failure Response
}

// Pass is the successful outcome.
func Pass() Outcome { return Outcome{} }

// Failed returns an outcome that short-circuits the request with resp.
func Failed(resp Response) Outcome { return Outcome{failure: resp} }

// Failed returns the failure response, if any.
func (o Outcome) Failed() (Response, bool) {
	return o.failure, o.failure != nil
}

// Condition is a named, composable predicate evaluated after binding.
type Condition interface {
	Description() string
	Check(r *Request) Outcome
}

type condition struct {
	desc   string
	check  func(r *Request) Outcome
	params []Param
}

// NewCondition returns a Condition. Parameters the check reads are declared
// on every endpoint the condition is attached to.
func NewCondition(desc string, check func(r *Request) Outcome, params ...Param) Condition {
	return &condition{desc: desc, check: check, params: slices.Clone(params)}
}

func (c *condition) Description() string      { return c.desc }
func (c *condition) Check(r *Request) Outcome { return c.check(r) }
func (c *condition) Params() []Param          { return c.params }

type paramDeclarer interface {
	Params() []Param
}

func conditionParams(c Condition) []Param {
	if pd, ok := c.(paramDeclarer); ok {
		return pd.Params()
	}
	return nil
}

// And passes when both conditions pass. b is not evaluated if a fails.
func And(a, b Condition) Condition {
	return &condition{
		desc: "(" + a.Description() + " and " + b.Description() + ")",
		check: func(r *Request) Outcome {
			if o := a.Check(r); o.failure != nil {
				return o
			}
			return b.Check(r)
		},
		params: slices.Concat(conditionParams(a), conditionParams(b)),
	}
}

// Or passes when either condition passes. When both fail the second
// failure is returned.
func Or(a, b Condition) Condition {
	return &condition{
		desc: "(" + a.Description() + " or " + b.Description() + ")",
		check: func(r *Request) Outcome {
			if o := a.Check(r); o.failure == nil {
				return o
			}
			return b.Check(r)
		},
		params: slices.Concat(conditionParams(a), conditionParams(b)),
	}
}

// Not inverts c. A passing c becomes a 400 failure.
func Not(c Condition) Condition {
	return &condition{
		desc: "!" + c.Description(),
		check: func(r *Request) Outcome {
			if o := c.Check(r); o.failure != nil {
				return Pass()
			}
			return Failed(Fail(http.StatusBadRequest, Problem(http.StatusBadRequest, "condition: "+c.Description()+" negated")))
		},
		params: conditionParams(c),
	}
}
