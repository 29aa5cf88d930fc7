package functions

import (
	"strings"

	"github.com/hearthmush/tinymush/pkg/eval"
	"github.com/hearthmush/tinymush/pkg/gamedb"
)

// classMask maps the side-effect class names sandbox() accepts onto
// their Function flag bits.
var classMask = map[string]int{
	"dbfx":    eval.FnDBFX,
	"qfx":     eval.FnQFX,
	"outfx":   eval.FnOutFX,
	"varfx":   eval.FnVarFX,
	"stackfx": eval.FnStackFX,
}

// fnNofx — nofx(code) evaluates code with every side-effect class
// forbidden: a call to a function tagged DBFX/QFX/OUTFX/VARFX/STACKFX
// anywhere in code returns "#-1 FUNCTION DISABLED" instead of running.
// The ambient f_limitmask is restored once code finishes evaluating.
func fnNofx(ctx *eval.EvalContext, args []string, buf *strings.Builder, _, _ gamedb.DBRef) {
	if len(args) < 1 {
		return
	}
	old := ctx.LimitMask
	ctx.LimitMask |= eval.FxClassMask
	result := ctx.Exec(args[0], eval.EvFCheck|eval.EvEval, nil)
	ctx.LimitMask = old
	buf.WriteString(result)
}

// fnSandbox — sandbox(classes, code) evaluates code with only the named
// side-effect classes forbidden (a space- or comma-separated list of
// dbfx, qfx, outfx, varfx, stackfx). Like nofx, it only ever narrows
// the ambient mask: a class an outer nofx()/sandbox() already forbade
// stays forbidden regardless of what classes are named here.
func fnSandbox(ctx *eval.EvalContext, args []string, buf *strings.Builder, _, _ gamedb.DBRef) {
	if len(args) < 2 {
		return
	}
	add := 0
	for _, name := range strings.FieldsFunc(args[0], func(r rune) bool { return r == ',' || r == ' ' }) {
		add |= classMask[strings.ToLower(name)]
	}
	old := ctx.LimitMask
	ctx.LimitMask |= add
	result := ctx.Exec(args[1], eval.EvFCheck|eval.EvEval, nil)
	ctx.LimitMask = old
	buf.WriteString(result)
}
