package evaluator

import (
	"strconv"
	"strings"

	cerrors "github.com/sambeau/chervil/pkg/chervil/errors"
)

// builtins holds the core builtin functions. Extension packages (like
// the rewrite engine) add theirs through RegisterBuiltin.
var builtins = map[string]*Builtin{}

func init() {
	register := func(name string, fn BuiltinFunction) {
		builtins[name] = &Builtin{Name: name, Fn: fn}
	}

	register("print", func(env *Environment, args ...Object) Object {
		parts := make([]any, len(args))
		for i, arg := range args {
			parts[i] = arg.Inspect()
		}
		env.Logger.LogLine(parts...)
		return NULL
	})

	register("len", func(env *Environment, args ...Object) Object {
		if len(args) != 1 {
			return arityError("len", 1, len(args))
		}
		switch arg := args[0].(type) {
		case *Array:
			return &Integer{Value: int64(len(arg.Elements))}
		case *String:
			return &Integer{Value: int64(len([]rune(arg.Value)))}
		case *Dictionary:
			return &Integer{Value: int64(len(arg.Keys))}
		}
		return typeError("len", "an array, string, or dictionary", args[0])
	})

	// copy makes a shallow copy: a fresh array or dictionary whose
	// elements are shared. This is the defensive-copy primitive the
	// rewrite engine inserts before aliased in-place combines.
	register("copy", func(env *Environment, args ...Object) Object {
		if len(args) != 1 {
			return arityError("copy", 1, len(args))
		}
		switch arg := args[0].(type) {
		case *Array:
			elements := make([]Object, len(arg.Elements))
			copy(elements, arg.Elements)
			return &Array{Elements: elements}
		case *Dictionary:
			clone := &Dictionary{Pairs: make(map[string]Object, len(arg.Keys))}
			for _, k := range arg.Keys {
				clone.Set(k, arg.Pairs[k])
			}
			return clone
		}
		// Scalars are immutable, copying is the identity
		return args[0]
	})

	register("push", func(env *Environment, args ...Object) Object {
		if len(args) != 2 {
			return arityError("push", 2, len(args))
		}
		arr, ok := args[0].(*Array)
		if !ok {
			return typeError("push", "an array", args[0])
		}
		elements := make([]Object, len(arr.Elements), len(arr.Elements)+1)
		copy(elements, arr.Elements)
		return &Array{Elements: append(elements, args[1])}
	})

	register("first", func(env *Environment, args ...Object) Object {
		if len(args) != 1 {
			return arityError("first", 1, len(args))
		}
		arr, ok := args[0].(*Array)
		if !ok {
			return typeError("first", "an array", args[0])
		}
		if len(arr.Elements) == 0 {
			return NULL
		}
		return arr.Elements[0]
	})

	register("last", func(env *Environment, args ...Object) Object {
		if len(args) != 1 {
			return arityError("last", 1, len(args))
		}
		arr, ok := args[0].(*Array)
		if !ok {
			return typeError("last", "an array", args[0])
		}
		if len(arr.Elements) == 0 {
			return NULL
		}
		return arr.Elements[len(arr.Elements)-1]
	})

	register("range", func(env *Environment, args ...Object) Object {
		var from, to int64
		switch len(args) {
		case 1:
			n, ok := args[0].(*Integer)
			if !ok {
				return typeError("range", "an integer", args[0])
			}
			to = n.Value
		case 2:
			a, aok := args[0].(*Integer)
			b, bok := args[1].(*Integer)
			if !aok || !bok {
				return typeError("range", "integers", args[0])
			}
			from, to = a.Value, b.Value
		default:
			return &Error{
				Class:   cerrors.ClassArity,
				Message: "range expected 1 or 2 argument(s), got " + strconv.Itoa(len(args)),
			}
		}
		elements := []Object{}
		for i := from; i < to; i++ {
			elements = append(elements, &Integer{Value: i})
		}
		return &Array{Elements: elements}
	})

	register("type", func(env *Environment, args ...Object) Object {
		if len(args) != 1 {
			return arityError("type", 1, len(args))
		}
		return &String{Value: strings.ToLower(string(args[0].Type()))}
	})
}

// RegisterBuiltin installs a builtin function under the given name.
// Extension packages call this from their init() so the evaluator
// never has to import them.
func RegisterBuiltin(name string, fn BuiltinFunction) {
	builtins[name] = &Builtin{Name: name, Fn: fn}
}

// BuiltinNames returns the names of all registered builtins, for REPL
// completion.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	return names
}

func lookupBuiltin(name string) (*Builtin, bool) {
	b, ok := builtins[name]
	return b, ok
}

// ApplyFunction applies a function or builtin to arguments in the
// context of the given environment.
func ApplyFunction(fn Object, args []Object, env *Environment) Object {
	return applyFunction(fn, args, env)
}

func arityError(name string, want, got int) *Error {
	return &Error{
		Class:   cerrors.ClassArity,
		Message: name + " expected " + strconv.Itoa(want) + " argument(s), got " + strconv.Itoa(got),
	}
}

func typeError(name, expected string, got Object) *Error {
	return cerrorToError(cerrors.New("TYPE-0001", map[string]any{
		"Function": name,
		"Expected": expected,
		"Got":      strings.ToLower(string(got.Type())),
	}))
}
