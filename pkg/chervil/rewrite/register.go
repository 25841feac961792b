package rewrite

import (
	"strconv"

	cerrors "github.com/sambeau/chervil/pkg/chervil/errors"
	"github.com/sambeau/chervil/pkg/chervil/evaluator"
)

// The optimize builtin is registered here rather than in the evaluator
// so the evaluator never imports the rewrite engine. Importing this
// package (a blank import is enough) makes @optimize available.
func init() {
	evaluator.RegisterBuiltin(EntryPointName, func(env *evaluator.Environment, args ...evaluator.Object) evaluator.Object {
		if len(args) != 1 {
			return &evaluator.Error{
				Class:   cerrors.ClassArity,
				Message: EntryPointName + " expected 1 argument, got " + strconv.Itoa(len(args)),
			}
		}

		var input any = args[0]
		if s, ok := args[0].(*evaluator.String); ok {
			input = s.Value
		}

		result, err := Optimize(input, env)
		if err != nil {
			if cerr, ok := err.(*cerrors.ChervilError); ok {
				return &evaluator.Error{
					Class:   cerr.Class,
					Code:    cerr.Code,
					Message: cerr.Message,
					Line:    cerr.Line,
					Column:  cerr.Column,
					File:    cerr.File,
				}
			}
			return &evaluator.Error{Class: cerrors.ClassRewrite, Message: err.Error()}
		}
		return result
	})
}
