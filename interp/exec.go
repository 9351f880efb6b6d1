package interp

import (
	"nyxlang/ast"
	"nyxlang/env"
	"nyxlang/value"
)

// exec executes a single statement in scope. It checks the control-flow
// flags before doing any work: once returning/breaking/continuing is set,
// every further statement in the current block becomes a no-op until the
// nearest consumer (function call, loop) clears it.
func (it *Interp) exec(stmt ast.Stmt, scope *env.Environment) error {
	if it.returning || it.breaking || it.continuing {
		return nil
	}

	switch s := stmt.(type) {
	case *ast.VarDecl:
		return it.execVarDecl(s, scope)
	case *ast.ExprStmt:
		v, err := it.eval(s.Expr, scope)
		if err != nil {
			return err
		}
		it.lastValue = v
		return nil
	case *ast.Block:
		return it.execBlock(s, scope.Child())
	case *ast.IfStmt:
		return it.execIf(s, scope)
	case *ast.WhileStmt:
		return it.execWhile(s, scope)
	case *ast.ForStmt:
		return it.execFor(s, scope)
	case *ast.FnDecl:
		return it.execFnDecl(s, scope)
	case *ast.ReturnStmt:
		return it.execReturn(s, scope)
	case *ast.BreakStmt:
		it.breaking = true
		return nil
	case *ast.ContinueStmt:
		it.continuing = true
		return nil
	case *ast.MatchStmt:
		return it.execMatch(s, scope)
	case *ast.DeferStmt:
		it.defers = append(it.defers, deferFrame{stmt: s.Stmt, scope: scope})
		return nil
	case *ast.ImportStmt:
		return it.doImport(s)
	case *ast.CBlock:
		return newError(ForeignError, int(s.Pos().Line), "embedded C is not implemented")
	default:
		return newError(RuntimeError, int(stmt.Pos().Line), "unhandled statement %s", stmt.String())
	}
}

// execBlock runs each statement of b in scope, firing any defers pushed
// during the block once it exits (normally, via an error, or via a
// control-flow flag becoming set).
func (it *Interp) execBlock(b *ast.Block, scope *env.Environment) error {
	marker := len(it.defers)
	for _, stmt := range b.Statements {
		if it.returning || it.breaking || it.continuing {
			break
		}
		if err := it.exec(stmt, scope); err != nil {
			it.runDefers(marker)
			return err
		}
	}
	return it.runDefers(marker)
}

func (it *Interp) execVarDecl(s *ast.VarDecl, scope *env.Environment) error {
	if _, exists := scope.GetLocal(s.Name); exists {
		return newError(NameError, int(s.Pos().Line), "variable %q already declared in this scope", s.Name)
	}
	v, err := it.eval(s.Init, scope)
	if err != nil {
		return err
	}
	scope.Define(s.Name, v, s.IsConst)
	return nil
}

func (it *Interp) execIf(s *ast.IfStmt, scope *env.Environment) error {
	cond, err := it.eval(s.Cond, scope)
	if err != nil {
		return err
	}
	if value.Truthy(cond) {
		return it.execBlock(s.Then, scope.Child())
	}
	if s.Else != nil {
		return it.exec(s.Else, scope)
	}
	return nil
}

func (it *Interp) execWhile(s *ast.WhileStmt, scope *env.Environment) error {
	for {
		cond, err := it.eval(s.Cond, scope)
		if err != nil {
			return err
		}
		if !value.Truthy(cond) {
			return nil
		}
		if err := it.execBlock(s.Body, scope.Child()); err != nil {
			return err
		}
		if it.breaking {
			it.breaking = false
			return nil
		}
		if it.continuing {
			it.continuing = false
		}
		if it.returning {
			return nil
		}
	}
}

func (it *Interp) execFor(s *ast.ForStmt, scope *env.Environment) error {
	iterable, err := it.eval(s.Iterable, scope)
	if err != nil {
		return err
	}
	if !iterable.IsArray() {
		return newError(TypeError, int(s.Pos().Line), "for-in requires an array, got %s", value.TypeName(iterable))
	}
	arr := iterable.AsArray()
	for _, elem := range arr.Elements() {
		loopScope := scope.Child()
		loopScope.Define(s.IterName, elem, false)
		if err := it.execBlock(s.Body, loopScope); err != nil {
			return err
		}
		if it.breaking {
			it.breaking = false
			break
		}
		if it.continuing {
			it.continuing = false
		}
		if it.returning {
			break
		}
	}
	return nil
}

func (it *Interp) execFnDecl(s *ast.FnDecl, scope *env.Environment) error {
	fn := value.NewFunction(s.Name, s.Params, s.Body, scope)
	scope.Define(s.Name, value.Obj(fn), false)
	return nil
}

func (it *Interp) execReturn(s *ast.ReturnStmt, scope *env.Environment) error {
	if s.Value == nil {
		it.returnValue = value.Nil
		it.returning = true
		return nil
	}
	v, err := it.eval(s.Value, scope)
	if err != nil {
		return err
	}
	it.returnValue = v
	it.returning = true
	return nil
}

func (it *Interp) execMatch(s *ast.MatchStmt, scope *env.Environment) error {
	subject, err := it.eval(s.Value, scope)
	if err != nil {
		return err
	}
	for _, arm := range s.Arms {
		matched, err := it.matchPattern(arm.Pattern, subject, scope)
		if err != nil {
			return err
		}
		if matched {
			return it.execBlock(arm.Body, scope.Child())
		}
	}
	return nil
}

// matchPattern evaluates a single match arm's pattern against subject. A
// nil pattern is the wildcard arm and always matches; a RangeExpr pattern
// matches an integer subject within [start, end); anything else matches by
// the standard equality rule.
func (it *Interp) matchPattern(pattern ast.Expr, subject value.Value, scope *env.Environment) (bool, error) {
	if pattern == nil {
		return true, nil
	}
	if rng, ok := pattern.(*ast.RangeExpr); ok {
		start, err := it.eval(rng.Start, scope)
		if err != nil {
			return false, err
		}
		end, err := it.eval(rng.End, scope)
		if err != nil {
			return false, err
		}
		if !subject.IsInt() || !start.IsInt() || !end.IsInt() {
			return false, nil
		}
		v := subject.AsInt()
		return v >= start.AsInt() && v < end.AsInt(), nil
	}
	patVal, err := it.eval(pattern, scope)
	if err != nil {
		return false, err
	}
	return value.Equals(patVal, subject), nil
}
