package functions

import (
	"strings"

	"github.com/hearthmush/tinymush/pkg/eval"
	"github.com/hearthmush/tinymush/pkg/gamedb"
)

// fnSetgrid — setgrid(obj, width, height) allocates (or reallocates) obj's
// grid, clearing all cells. Fails past the configured max_grid_size.
func fnSetgrid(ctx *eval.EvalContext, args []string, buf *strings.Builder, caller, _ gamedb.DBRef) {
	if len(args) < 3 {
		buf.WriteString("#-1 FUNCTION (SETGRID) EXPECTS 3 ARGUMENTS")
		return
	}
	ref := resolveDBRef(ctx, args[0])
	if _, ok := ctx.DB.Objects[ref]; !ok {
		buf.WriteString("#-1 NO SUCH OBJECT")
		return
	}
	w, h := toInt(args[1]), toInt(args[2])
	ok, errMsg := ctx.GameState.GridResize(ref, w, h)
	if !ok {
		buf.WriteString(errMsg)
		return
	}
	buf.WriteString("1")
}

// fnGrid — grid(obj, x, y[, val]) reads the cell at (x,y), or writes val
// to it and returns val when a fourth argument is given.
func fnGrid(ctx *eval.EvalContext, args []string, buf *strings.Builder, caller, _ gamedb.DBRef) {
	if len(args) < 3 {
		buf.WriteString("#-1 FUNCTION (GRID) EXPECTS AT LEAST 3 ARGUMENTS")
		return
	}
	ref := resolveDBRef(ctx, args[0])
	if _, ok := ctx.DB.Objects[ref]; !ok {
		buf.WriteString("#-1 NO SUCH OBJECT")
		return
	}
	x, y := toInt(args[1]), toInt(args[2])
	if len(args) >= 4 {
		if !ctx.GameState.GridSet(ref, x, y, args[3]) {
			buf.WriteString("#-1 OUT OF BOUNDS")
			return
		}
		buf.WriteString(args[3])
		return
	}
	buf.WriteString(ctx.GameState.GridGet(ref, x, y))
}

// fnGridsize — gridsize(obj) returns "width height", or "0 0" if obj has
// no grid.
func fnGridsize(ctx *eval.EvalContext, args []string, buf *strings.Builder, caller, _ gamedb.DBRef) {
	if len(args) < 1 {
		buf.WriteString("0 0")
		return
	}
	ref := resolveDBRef(ctx, args[0])
	w, h := ctx.GameState.GridSize(ref)
	buf.WriteString(itoa(w))
	buf.WriteByte(' ')
	buf.WriteString(itoa(h))
}

// fnCleargrid — cleargrid(obj) removes obj's grid entirely.
func fnCleargrid(ctx *eval.EvalContext, args []string, buf *strings.Builder, caller, _ gamedb.DBRef) {
	if len(args) < 1 {
		return
	}
	ref := resolveDBRef(ctx, args[0])
	ctx.GameState.GridClear(ref)
}

func itoa(n int) string {
	var b strings.Builder
	writeInt(&b, n)
	return b.String()
}
