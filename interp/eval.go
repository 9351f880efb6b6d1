package interp

import (
	"math"

	"nyxlang/ast"
	"nyxlang/env"
	"nyxlang/native/ffi"
	"nyxlang/token"
	"nyxlang/value"
)

// eval evaluates an expression to a Value. It is total and side-effect
// free except for allocation and foreign calls, per the evaluator's
// contract; a non-nil error always means a runtime error, never a
// control-flow signal (those live in Interp's flag fields).
func (it *Interp) eval(expr ast.Expr, scope *env.Environment) (value.Value, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return value.Int(e.Value), nil
	case *ast.FloatLiteral:
		return value.Float(e.Value), nil
	case *ast.StringLiteral:
		return value.Obj(value.NewString(e.Value)), nil
	case *ast.BoolLiteral:
		return value.Bool(e.Value), nil
	case *ast.NilLiteral:
		return value.Nil, nil
	case *ast.Identifier:
		v, ok := scope.Get(e.Name)
		if !ok {
			return value.Nil, newError(NameError, int(e.Pos().Line), "undefined variable %q", e.Name)
		}
		return v, nil
	case *ast.BinaryExpr:
		return it.evalBinary(e, scope)
	case *ast.LogicalExpr:
		return it.evalLogical(e, scope)
	case *ast.UnaryExpr:
		return it.evalUnary(e, scope)
	case *ast.AddressOf:
		return it.evalAddressOf(e, scope)
	case *ast.AssignExpr:
		return it.evalAssign(e, scope)
	case *ast.CallExpr:
		return it.evalCall(e, scope)
	case *ast.IndexExpr:
		return it.evalIndex(e, scope)
	case *ast.FieldExpr:
		return it.evalField(e, scope)
	case *ast.ArrayLiteral:
		return it.evalArrayLiteral(e, scope)
	case *ast.TableLiteral:
		return it.evalTableLiteral(e, scope)
	case *ast.RangeExpr:
		return it.evalRange(e, scope)
	case *ast.Lambda:
		fn := value.NewFunction("", e.Params, e.Body, scope)
		return value.Obj(fn), nil
	default:
		return value.Nil, newError(RuntimeError, int(expr.Pos().Line), "unhandled expression %s", expr.String())
	}
}

func (it *Interp) evalLogical(e *ast.LogicalExpr, scope *env.Environment) (value.Value, error) {
	left, err := it.eval(e.Left, scope)
	if err != nil {
		return value.Nil, err
	}
	if e.Op == token.OR {
		if value.Truthy(left) {
			return left, nil
		}
		return it.eval(e.Right, scope)
	}
	// AND
	if !value.Truthy(left) {
		return left, nil
	}
	return it.eval(e.Right, scope)
}

func (it *Interp) evalUnary(e *ast.UnaryExpr, scope *env.Environment) (value.Value, error) {
	operand, err := it.eval(e.Operand, scope)
	if err != nil {
		return value.Nil, err
	}
	line := int(e.Pos().Line)
	switch e.Op {
	case token.BANG:
		return value.Bool(!value.Truthy(operand)), nil
	case token.MINUS:
		switch {
		case operand.IsInt():
			return value.Int(-operand.AsInt()), nil
		case operand.IsFloat():
			return value.Float(-operand.AsFloat()), nil
		default:
			return value.Nil, newError(TypeError, line, "unary '-' requires a number, got %s", value.TypeName(operand))
		}
	}
	return value.Nil, newError(RuntimeError, line, "unknown unary operator")
}

func (it *Interp) evalAddressOf(e *ast.AddressOf, scope *env.Environment) (value.Value, error) {
	v, err := it.eval(e.Operand, scope)
	if err != nil {
		return value.Nil, err
	}
	// Address-of exists for foreign interop: it exposes a C struct's
	// backing buffer as a raw pointer so it can be passed to a function
	// expecting T*. The pointer shares the struct's lifetime.
	if v.IsCStruct() {
		return value.Obj(value.NewPointer(v.AsCStruct().DataPtr(), v.AsCStruct().Desc.Name+"*")), nil
	}
	return value.Nil, newError(TypeError, int(e.Pos().Line), "cannot take address of %s", value.TypeName(v))
}

func (it *Interp) evalBinary(e *ast.BinaryExpr, scope *env.Environment) (value.Value, error) {
	left, err := it.eval(e.Left, scope)
	if err != nil {
		return value.Nil, err
	}
	right, err := it.eval(e.Right, scope)
	if err != nil {
		return value.Nil, err
	}
	line := int(e.Pos().Line)

	switch e.Op {
	case token.EQEQ:
		return value.Bool(value.Equals(left, right)), nil
	case token.BANGEQ:
		return value.Bool(!value.Equals(left, right)), nil
	case token.PLUS:
		if left.IsString() {
			if right.IsString() {
				return value.Obj(value.Concat(left.AsString(), right.AsString())), nil
			}
			// String on the left stringifies the right operand.
			return value.Obj(value.NewString(left.AsString().Chars() + value.ToString(right))), nil
		}
		return arith(left, right, line, "+",
			func(a, b int64) int64 { return a + b },
			func(a, b float64) float64 { return a + b })
	case token.MINUS:
		return arith(left, right, line, "-",
			func(a, b int64) int64 { return a - b },
			func(a, b float64) float64 { return a - b })
	case token.STAR:
		return arith(left, right, line, "*",
			func(a, b int64) int64 { return a * b },
			func(a, b float64) float64 { return a * b })
	case token.SLASH:
		if isZero(right) {
			return value.Nil, newError(ArithmeticError, line, "division by zero")
		}
		return arith(left, right, line, "/",
			func(a, b int64) int64 { return a / b },
			func(a, b float64) float64 { return a / b })
	case token.PERCENT:
		if isZero(right) {
			return value.Nil, newError(ArithmeticError, line, "modulo by zero")
		}
		return arith(left, right, line, "%",
			func(a, b int64) int64 { return a % b },
			math.Mod)
	case token.LT, token.GT, token.LTEQ, token.GTEQ:
		return compareOp(left, right, line, e.Op)
	}
	return value.Nil, newError(RuntimeError, line, "unknown binary operator")
}

func isZero(v value.Value) bool {
	if v.IsInt() {
		return v.AsInt() == 0
	}
	if v.IsFloat() {
		return v.AsFloat() == 0
	}
	return false
}

// arith implements the shared int/float-promotion rule for arithmetic
// operators: int op int stays int; anything with a float operand promotes
// both to float.
func arith(left, right value.Value, line int, opName string, intFn func(int64, int64) int64, floatFn func(float64, float64) float64) (value.Value, error) {
	if !left.IsNumber() || !right.IsNumber() {
		return value.Nil, newError(TypeError, line, "operator %q requires numbers, got %s and %s", opName, value.TypeName(left), value.TypeName(right))
	}
	if left.IsInt() && right.IsInt() {
		return value.Int(intFn(left.AsInt(), right.AsInt())), nil
	}
	return value.Float(floatFn(left.AsNumber(), right.AsNumber())), nil
}

func compareOp(left, right value.Value, line int, op token.Kind) (value.Value, error) {
	if left.IsNumber() && right.IsNumber() {
		a, b := left.AsNumber(), right.AsNumber()
		switch op {
		case token.LT:
			return value.Bool(a < b), nil
		case token.GT:
			return value.Bool(a > b), nil
		case token.LTEQ:
			return value.Bool(a <= b), nil
		case token.GTEQ:
			return value.Bool(a >= b), nil
		}
	}
	if left.IsString() && right.IsString() {
		a, b := left.AsString().Chars(), right.AsString().Chars()
		switch op {
		case token.LT:
			return value.Bool(a < b), nil
		case token.GT:
			return value.Bool(a > b), nil
		case token.LTEQ:
			return value.Bool(a <= b), nil
		case token.GTEQ:
			return value.Bool(a >= b), nil
		}
	}
	return value.Nil, newError(TypeError, line, "cannot compare %s and %s", value.TypeName(left), value.TypeName(right))
}

func (it *Interp) evalAssign(e *ast.AssignExpr, scope *env.Environment) (value.Value, error) {
	v, err := it.eval(e.Value, scope)
	if err != nil {
		return value.Nil, err
	}
	line := int(e.Pos().Line)
	switch t := e.Target.(type) {
	case *ast.Identifier:
		if !scope.Assign(t.Name, v) {
			if _, exists := scope.Get(t.Name); exists {
				return value.Nil, newError(NameError, line, "cannot assign to const %q", t.Name)
			}
			return value.Nil, newError(NameError, line, "undefined variable %q", t.Name)
		}
		return v, nil
	case *ast.IndexExpr:
		obj, err := it.eval(t.Object, scope)
		if err != nil {
			return value.Nil, err
		}
		idx, err := it.eval(t.Index, scope)
		if err != nil {
			return value.Nil, err
		}
		switch {
		case obj.IsArray():
			if !idx.IsInt() {
				return value.Nil, newError(TypeError, line, "array index must be an integer")
			}
			arr := obj.AsArray()
			if !arr.Set(int(idx.AsInt()), v) {
				return value.Nil, newError(IndexError, line, "index %d out of bounds (length %d)", idx.AsInt(), arr.Len())
			}
			return v, nil
		case obj.IsTable():
			if !idx.IsString() {
				return value.Nil, newError(TypeError, line, "table key must be a string, got %s", value.TypeName(idx))
			}
			if !obj.AsTable().Set(idx.AsString(), v, false) {
				return value.Nil, newError(NameError, line, "cannot assign to const key %q", idx.AsString().Chars())
			}
			return v, nil
		default:
			return value.Nil, newError(TypeError, line, "cannot index into %s", value.TypeName(obj))
		}
	case *ast.FieldExpr:
		obj, err := it.eval(t.Object, scope)
		if err != nil {
			return value.Nil, err
		}
		switch {
		case obj.IsTable():
			if !obj.AsTable().Set(value.NewString(t.Name), v, false) {
				return value.Nil, newError(NameError, line, "cannot assign to const field %q", t.Name)
			}
			return v, nil
		case obj.IsCStruct():
			if err := ffi.SetField(obj.AsCStruct(), t.Name, v); err != nil {
				return value.Nil, newError(ForeignError, line, "%v", err)
			}
			return v, nil
		default:
			return value.Nil, newError(TypeError, line, "cannot set field %q on %s", t.Name, value.TypeName(obj))
		}
	}
	return value.Nil, newError(RuntimeError, line, "invalid assignment target")
}

func (it *Interp) evalIndex(e *ast.IndexExpr, scope *env.Environment) (value.Value, error) {
	obj, err := it.eval(e.Object, scope)
	if err != nil {
		return value.Nil, err
	}
	idx, err := it.eval(e.Index, scope)
	if err != nil {
		return value.Nil, err
	}
	line := int(e.Pos().Line)
	switch {
	case obj.IsArray():
		if !idx.IsInt() {
			return value.Nil, newError(TypeError, line, "array index must be an integer, got %s", value.TypeName(idx))
		}
		v, ok := obj.AsArray().Get(int(idx.AsInt()))
		if !ok {
			return value.Nil, newError(IndexError, line, "index %d out of bounds (length %d)", idx.AsInt(), obj.AsArray().Len())
		}
		return v, nil
	case obj.IsString():
		if !idx.IsInt() {
			return value.Nil, newError(TypeError, line, "string index must be an integer")
		}
		chars := obj.AsString().Chars()
		i := int(idx.AsInt())
		if i < 0 || i >= len(chars) {
			return value.Nil, newError(IndexError, line, "index %d out of bounds (length %d)", i, len(chars))
		}
		return value.Obj(value.NewString(string(chars[i]))), nil
	case obj.IsTable():
		if !idx.IsString() {
			return value.Nil, newError(TypeError, line, "table key must be a string, got %s", value.TypeName(idx))
		}
		v, ok := obj.AsTable().Get(idx.AsString())
		if !ok {
			return value.Nil, nil
		}
		return v, nil
	default:
		return value.Nil, newError(TypeError, line, "cannot index into %s", value.TypeName(obj))
	}
}

func (it *Interp) evalField(e *ast.FieldExpr, scope *env.Environment) (value.Value, error) {
	obj, err := it.eval(e.Object, scope)
	if err != nil {
		return value.Nil, err
	}
	line := int(e.Pos().Line)
	switch {
	case obj.IsTable():
		v, ok := obj.AsTable().Get(value.NewString(e.Name))
		if !ok {
			return value.Nil, nil
		}
		return v, nil
	case obj.IsCStruct():
		v, err := ffi.GetField(obj.AsCStruct(), e.Name)
		if err != nil {
			return value.Nil, newError(ForeignError, line, "%v", err)
		}
		return v, nil
	default:
		return value.Nil, newError(TypeError, line, "cannot access field %q on %s", e.Name, value.TypeName(obj))
	}
}

func (it *Interp) evalArrayLiteral(e *ast.ArrayLiteral, scope *env.Environment) (value.Value, error) {
	arr := value.NewArray()
	for _, elemExpr := range e.Elements {
		v, err := it.eval(elemExpr, scope)
		if err != nil {
			return value.Nil, err
		}
		arr.Push(v)
	}
	return value.Obj(arr), nil
}

func (it *Interp) evalTableLiteral(e *ast.TableLiteral, scope *env.Environment) (value.Value, error) {
	tbl := value.NewTable()
	for _, entry := range e.Entries {
		v, err := it.eval(entry.Value, scope)
		if err != nil {
			return value.Nil, err
		}
		tbl.Set(value.NewString(entry.Key), v, false)
	}
	return value.Obj(tbl), nil
}

func (it *Interp) evalRange(e *ast.RangeExpr, scope *env.Environment) (value.Value, error) {
	start, err := it.eval(e.Start, scope)
	if err != nil {
		return value.Nil, err
	}
	end, err := it.eval(e.End, scope)
	if err != nil {
		return value.Nil, err
	}
	line := int(e.Pos().Line)
	if !start.IsInt() || !end.IsInt() {
		return value.Nil, newError(TypeError, line, "range bounds must be integers")
	}
	s, en := start.AsInt(), end.AsInt()
	arr := value.NewArray()
	if s <= en {
		for i := s; i < en; i++ {
			arr.Push(value.Int(i))
		}
	} else {
		for i := s; i > en; i-- {
			arr.Push(value.Int(i))
		}
	}
	return value.Obj(arr), nil
}
