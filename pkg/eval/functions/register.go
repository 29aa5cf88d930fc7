package functions

import "github.com/hearthmush/tinymush/pkg/eval"

// RegisterAll wires every built-in softcode function into ctx's
// function table under its canonical name. Called once per fresh
// EvalContext.
//
// All entries register with FnVarArgs: each handler below validates
// its own argument count against args, matching this package's
// existing defensive style rather than relying on exec.go's strict
// NArgs check.
func RegisterAll(ctx *eval.EvalContext) {
	ctx.RegisterFunction("ABS", fnAbs, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ABSGRID", fnAbsgrid, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ACOS", fnAcos, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ACOSD", fnAcosd, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ADD", fnAdd, 0, eval.FnVarArgs)
	ctx.RegisterFunction("AFTER", fnAfter, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ALPHAMAX", fnAlphamax, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ALPHAMIN", fnAlphamin, 0, eval.FnVarArgs)
	ctx.RegisterFunction("AND", fnAnd, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ANDBOOL", fnAndbool, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ANDFLAGS", fnAndflags, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ANSI", fnAnsi, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ANSIPOS", fnAnsipos, 0, eval.FnVarArgs)
	ctx.RegisterFunction("APOSS", fnAposs, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ART", fnArt, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ASC", fnAsc, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ASIN", fnAsin, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ASIND", fnAsind, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ATAN", fnAtan, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ATAN2", fnAtan2, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ATAND", fnAtand, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ATTRCNT", fnAttrcnt, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ATTRDEFFLAGS", fnAttrdefflags, 0, eval.FnVarArgs)
	ctx.RegisterFunction("AVG", fnAvg, 0, eval.FnVarArgs)
	ctx.RegisterFunction("BAND", fnBand, 0, eval.FnVarArgs)
	ctx.RegisterFunction("BEARING", fnBearing, 0, eval.FnVarArgs)
	ctx.RegisterFunction("BEEP", fnBeep, 0, eval.FnVarArgs|eval.FnOutFX)
	ctx.RegisterFunction("BEFORE", fnBefore, 0, eval.FnVarArgs)
	ctx.RegisterFunction("BETWEEN", fnBetween, 0, eval.FnVarArgs)
	ctx.RegisterFunction("BNAND", fnBnand, 0, eval.FnVarArgs)
	ctx.RegisterFunction("BOR", fnBor, 0, eval.FnVarArgs)
	ctx.RegisterFunction("BORDER", fnBorder, 0, eval.FnVarArgs)
	ctx.RegisterFunction("BOUND", fnBound, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CAND", fnCand, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CANDBOOL", fnCandbool, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CAPLIST", fnCaplist, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CAPSTR", fnCapstr, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CASE", fnCase, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CAT", fnCat, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CBORDER", fnCborder, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CCOUNT", fnCcount, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CDEPTH", fnCdepth, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CEIL", fnCeil, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CENTER", fnCenter, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CHILDREN", fnChildren, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CHOMP", fnChomp, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CHOOSE", fnChoose, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CHR", fnChr, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CINFO", fnCinfo, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CLEARGRID", fnCleargrid, 0, eval.FnVarArgs|eval.FnDBFX)
	ctx.RegisterFunction("CLEARVARS", fnClearvars, 0, eval.FnVarArgs|eval.FnVarFX)
	ctx.RegisterFunction("CLOSING", fnClosing, 0, eval.FnVarArgs)
	ctx.RegisterFunction("COLUMNS", fnColumns, 0, eval.FnVarArgs)
	ctx.RegisterFunction("COMMAND", fnCommand, 0, eval.FnVarArgs)
	ctx.RegisterFunction("COMP", fnComp, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CON", fnCon, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CONFIG", fnConfig, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CONN", fnConn, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CONNRECORD", fnConnrecord, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CONSTRUCT", fnConstruct, 0, eval.FnVarArgs|eval.FnDBFX)
	ctx.RegisterFunction("CONTROLS", fnControls, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CONVSECS", fnConvsecs, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CONVTIME", fnConvtime, 0, eval.FnVarArgs)
	ctx.RegisterFunction("COR", fnCor, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CORBOOL", fnCorbool, 0, eval.FnVarArgs)
	ctx.RegisterFunction("COS", fnCos, 0, eval.FnVarArgs)
	ctx.RegisterFunction("COSD", fnCosd, 0, eval.FnVarArgs)
	ctx.RegisterFunction("COSH", fnCosh, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CRC32", fnCrc32, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CREATE", fnCreate, 0, eval.FnVarArgs|eval.FnDBFX)
	ctx.RegisterFunction("CREATETIME", fnCreatetime, 0, eval.FnVarArgs)
	ctx.RegisterFunction("CTABLES", fnCtables, 0, eval.FnVarArgs)
	ctx.RegisterFunction("DEC", fnDec, 0, eval.FnVarArgs)
	ctx.RegisterFunction("DECODE64", fnDecode64, 0, eval.FnVarArgs)
	ctx.RegisterFunction("DECRYPT", fnDecrypt, 0, eval.FnVarArgs)
	ctx.RegisterFunction("DEFAULT", fnDefault, 0, eval.FnVarArgs)
	ctx.RegisterFunction("DEG2H", fnDeg2h, 0, eval.FnVarArgs)
	ctx.RegisterFunction("DELETE", fnDelete, 0, eval.FnVarArgs)
	ctx.RegisterFunction("DELIMIT", fnDelimit, 0, eval.FnVarArgs)
	ctx.RegisterFunction("DESTRUCT", fnDestruct, 0, eval.FnVarArgs|eval.FnDBFX)
	ctx.RegisterFunction("DIE", fnDie, 0, eval.FnVarArgs)
	ctx.RegisterFunction("DIGEST", fnDigest, 0, eval.FnVarArgs)
	ctx.RegisterFunction("DIST2D", fnDist2d, 0, eval.FnVarArgs)
	ctx.RegisterFunction("DIST3D", fnDist3d, 0, eval.FnVarArgs)
	ctx.RegisterFunction("DIV", fnDiv, 0, eval.FnVarArgs)
	ctx.RegisterFunction("DOING", fnDoingFn, 0, eval.FnVarArgs)
	ctx.RegisterFunction("DRIFT", fnDrift, 0, eval.FnVarArgs)
	ctx.RegisterFunction("DUP", fnDup, 0, eval.FnVarArgs|eval.FnStackFX)
	ctx.RegisterFunction("E", fnE, 0, eval.FnVarArgs)
	ctx.RegisterFunction("EDEFAULT", fnEdefault, 0, eval.FnVarArgs)
	ctx.RegisterFunction("EDIT", fnEdit, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ELEMENTPOS", fnElementpos, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ELEMENTS", fnElements, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ELOCK", fnElock, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ELOCKSTR", fnElockstr, 0, eval.FnVarArgs)
	ctx.RegisterFunction("EMPTY", fnEmpty, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ENCODE64", fnEncode64, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ENCRYPT", fnEncrypt, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ENTRANCES", fnEntrances, 0, eval.FnVarArgs)
	ctx.RegisterFunction("EQ", fnEq, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ESCAPE", fnEscape, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ETA", fnEta, 0, eval.FnVarArgs)
	ctx.RegisterFunction("EVAL", fnEvalFn, 0, eval.FnVarArgs)
	ctx.RegisterFunction("EXIT", fnExit, 0, eval.FnVarArgs)
	ctx.RegisterFunction("EXP", fnExp, 0, eval.FnVarArgs)
	ctx.RegisterFunction("EXTRACT", fnExtract, 0, eval.FnVarArgs)
	ctx.RegisterFunction("FADD", fnFadd, 0, eval.FnVarArgs)
	ctx.RegisterFunction("FCOUNT", fnFcount, 0, eval.FnVarArgs)
	ctx.RegisterFunction("FDEPTH", fnFdepth, 0, eval.FnVarArgs)
	ctx.RegisterFunction("FDIV", fnFdiv, 0, eval.FnVarArgs)
	ctx.RegisterFunction("FILTER", fnFilter, 0, eval.FnVarArgs)
	ctx.RegisterFunction("FILTERBOOL", fnFilterbool, 0, eval.FnVarArgs)
	ctx.RegisterFunction("FINDABLE", fnFindable, 0, eval.FnVarArgs)
	ctx.RegisterFunction("FIRST", fnFirst, 0, eval.FnVarArgs)
	ctx.RegisterFunction("FLAGS", fnFlags, 0, eval.FnVarArgs)
	ctx.RegisterFunction("FLOOR", fnFloor, 0, eval.FnVarArgs)
	ctx.RegisterFunction("FLOORDIV", fnFloordiv, 0, eval.FnVarArgs)
	ctx.RegisterFunction("FMOD", fnFmod, 0, eval.FnVarArgs)
	ctx.RegisterFunction("FMUL", fnFmul, 0, eval.FnVarArgs)
	ctx.RegisterFunction("FOLD", fnFold, 0, eval.FnVarArgs)
	ctx.RegisterFunction("FORCE", fnForce, 0, eval.FnVarArgs|eval.FnDBFX)
	ctx.RegisterFunction("FOREACH", fnForeach, 0, eval.FnVarArgs)
	ctx.RegisterFunction("FSUB", fnFsub, 0, eval.FnVarArgs)
	ctx.RegisterFunction("FULLNAME", fnFullname, 0, eval.FnVarArgs)
	ctx.RegisterFunction("GARBLE", fnGarble, 0, eval.FnVarArgs)
	ctx.RegisterFunction("GET", fnGet, 0, eval.FnVarArgs)
	ctx.RegisterFunction("GET_EVAL", fnGetEval, 0, eval.FnVarArgs)
	ctx.RegisterFunction("GRAB", fnGrab, 0, eval.FnVarArgs)
	ctx.RegisterFunction("GRABALL", fnGraball, 0, eval.FnVarArgs)
	ctx.RegisterFunction("GREP", fnGrep, 0, eval.FnVarArgs)
	ctx.RegisterFunction("GREPI", fnGrepi, 0, eval.FnVarArgs)
	ctx.RegisterFunction("GRID", fnGrid, 0, eval.FnVarArgs)
	ctx.RegisterFunction("GRIDABS", fnGridabs, 0, eval.FnVarArgs)
	ctx.RegisterFunction("GRIDCOURSE", fnGridcourse, 0, eval.FnVarArgs)
	ctx.RegisterFunction("GRIDDIST", fnGriddist, 0, eval.FnVarArgs)
	ctx.RegisterFunction("GRIDNAV", fnGridnav, 0, eval.FnVarArgs)
	ctx.RegisterFunction("GRIDSIZE", fnGridsize, 0, eval.FnVarArgs)
	ctx.RegisterFunction("GROUP", fnGroup, 0, eval.FnVarArgs)
	ctx.RegisterFunction("GT", fnGt, 0, eval.FnVarArgs)
	ctx.RegisterFunction("GTE", fnGte, 0, eval.FnVarArgs)
	ctx.RegisterFunction("H2DEG", fnH2deg, 0, eval.FnVarArgs)
	ctx.RegisterFunction("HASATTR", fnHasattr, 0, eval.FnVarArgs)
	ctx.RegisterFunction("HASATTRDEF", fnHasattrdef, 0, eval.FnVarArgs)
	ctx.RegisterFunction("HASATTRP", fnHasattrp, 0, eval.FnVarArgs)
	ctx.RegisterFunction("HASFLAG", fnHasflag, 0, eval.FnVarArgs)
	ctx.RegisterFunction("HASFLAGS", fnHasflags, 0, eval.FnVarArgs)
	ctx.RegisterFunction("HASMODULE", fnHasmodule, 0, eval.FnVarArgs)
	ctx.RegisterFunction("HASPOWER", fnHaspower, 0, eval.FnVarArgs)
	ctx.RegisterFunction("HASTYPE", fnHastype, 0, eval.FnVarArgs)
	ctx.RegisterFunction("HDELTA", fnHdelta, 0, eval.FnVarArgs)
	ctx.RegisterFunction("HEARS", fnHears, 0, eval.FnVarArgs)
	ctx.RegisterFunction("HELPTEXT", fnHelptext, 0, eval.FnVarArgs)
	ctx.RegisterFunction("HNAME", fnHname, 0, eval.FnVarArgs)
	ctx.RegisterFunction("HOME", fnHome, 0, eval.FnVarArgs)
	ctx.RegisterFunction("HTML_ESCAPE", fnHtmlEscape, 0, eval.FnVarArgs)
	ctx.RegisterFunction("HTML_UNESCAPE", fnHtmlUnescape, 0, eval.FnVarArgs)
	ctx.RegisterFunction("HVEC", fnHvec, 0, eval.FnVarArgs)
	ctx.RegisterFunction("IBREAK", fnIbreak, 0, eval.FnVarArgs)
	ctx.RegisterFunction("IDLE", fnIdleFn, 0, eval.FnVarArgs)
	ctx.RegisterFunction("IF", fnIf, 0, eval.FnVarArgs)
	ctx.RegisterFunction("IFELSE", fnIfElse, 0, eval.FnVarArgs)
	ctx.RegisterFunction("IFFALSE", fnIffalse, 0, eval.FnVarArgs)
	ctx.RegisterFunction("IFTRUE", fnIftrue, 0, eval.FnVarArgs)
	ctx.RegisterFunction("IFZERO", fnIfzero, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ILEV", fnIlev, 0, eval.FnVarArgs)
	ctx.RegisterFunction("INC", fnInc, 0, eval.FnVarArgs)
	ctx.RegisterFunction("INDEX", fnIndex, 0, eval.FnVarArgs)
	ctx.RegisterFunction("INSERT", fnInsert, 0, eval.FnVarArgs)
	ctx.RegisterFunction("INTERCEPT", fnIntercept, 0, eval.FnVarArgs)
	ctx.RegisterFunction("INUM", fnInum, 0, eval.FnVarArgs)
	ctx.RegisterFunction("INZONE", fnInzone, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ISALNUM", fnIsalnum, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ISALPHA", fnIsalpha, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ISDBREF", fnIsdbref, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ISDIGIT", fnIsdigit, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ISFALSE", fnIsfalse, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ISLOWER", fnIslower, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ISNUM", fnIsnum, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ISOBJID", fnIsobjid, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ISORT", fnIsort, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ISPUNCT", fnIspunct, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ISSPACE", fnIsspace, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ISTRUE", fnIstrue, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ISUPPER", fnIsupper, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ISWORD", fnIsword, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ITEMIZE", fnItemize, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ITEMS", fnItems, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ITER", fnIter, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ITER2", fnIter2, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ITEXT", fnItext, 0, eval.FnVarArgs)
	ctx.RegisterFunction("KNOWS", fnKnows, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LADD", fnLadd, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LAND", fnLand, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LANDBOOL", fnLandbool, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LAST", fnLast, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LASTACCESS", fnLastaccess, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LASTCREATE", fnLastcreate, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LASTMOD", fnLastmod, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LATTR", fnLattr, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LATTRDEF", fnLattrdef, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LAVG", fnLavg, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LCMDS", fnLcmds, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LCON", fnLcon, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LCSTR", fnLcstr, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LDELETE", fnLdelete, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LDIV", fnLdiv, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LEDIT", fnLedit, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LEFT", fnLeft, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LET", fnLet, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LEXITS", fnLexits, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LINK", fnLink, 0, eval.FnVarArgs|eval.FnDBFX)
	ctx.RegisterFunction("LINSTANCES", fnLinstances, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LIST", fnList, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LIST2", fnList2, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LISTMATCH", fnListmatch, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LIT", fnLit, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LJUST", fnLjust, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LMAX", fnLmax, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LMIN", fnLmin, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LMUL", fnLmul, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LN", fnLn, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LNUM", fnLnum, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LOAD", fnLoadStruct, 0, eval.FnVarArgs|eval.FnDBFX)
	ctx.RegisterFunction("LOC", fnLoc, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LOCALIZE", fnLocalize, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LOCATE", fnLocate, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LOCK", fnLockFn, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LOG", fnLog, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LOOP", fnLoop, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LOR", fnLor, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LORBOOL", fnLorbool, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LPARENT", fnLparent, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LPOS", fnLpos, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LRAND", fnLrand, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LREGS", fnLregs, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LREPLACE", fnLreplace, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LROOMS", fnLrooms, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LSTACK", fnLstack, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LSTRUCTURES", fnLstructures, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LSUB", fnLsub, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LT", fnLt, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LTE", fnLte, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LVARS", fnLvars, 0, eval.FnVarArgs)
	ctx.RegisterFunction("LWHO", fnLwho, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MAIL", fnMail, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MAILFROM", fnMailfrom, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MAILSUBJ", fnMailsubj, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MAP", fnMap, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MATCH", fnMatch, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MATCHALL", fnMatchall, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MAX", fnMax, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MEDIAN", fnMedian, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MEMBER", fnMember, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MERGE", fnMerge, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MID", fnMid, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MIN", fnMin, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MIX", fnMix, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MODIFY", fnModify, 0, eval.FnVarArgs|eval.FnDBFX)
	ctx.RegisterFunction("MODULO", fnModulo, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MONEY", fnMoney, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MOVES", fnMoves, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MUDNAME", fnMudname, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MUL", fnMul, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MUNGE", fnMunge, 0, eval.FnVarArgs)
	ctx.RegisterFunction("MWHO", fnMwho, 0, eval.FnVarArgs)
	ctx.RegisterFunction("NAME", fnName, 0, eval.FnVarArgs)
	ctx.RegisterFunction("NAND", fnNand, 0, eval.FnVarArgs)
	ctx.RegisterFunction("NATTR", fnNattr, 0, eval.FnVarArgs)
	ctx.RegisterFunction("NCOMP", fnNcomp, 0, eval.FnVarArgs)
	ctx.RegisterFunction("NEARBY", fnNearby, 0, eval.FnVarArgs)
	ctx.RegisterFunction("NEQ", fnNeq, 0, eval.FnVarArgs)
	ctx.RegisterFunction("NESCAPE", fnNescape, 0, eval.FnVarArgs)
	ctx.RegisterFunction("NEXT", fnNext, 0, eval.FnVarArgs)
	ctx.RegisterFunction("NOFX", fnNofx, 0, eval.FnVarArgs|eval.FnNoEval)
	ctx.RegisterFunction("NOR", fnNor, 0, eval.FnVarArgs)
	ctx.RegisterFunction("NOT", fnNot, 0, eval.FnVarArgs)
	ctx.RegisterFunction("NOT_BOOL", fnNotBool, 0, eval.FnVarArgs)
	ctx.RegisterFunction("NSECURE", fnNsecure, 0, eval.FnVarArgs)
	ctx.RegisterFunction("NULL", fnNull, 0, eval.FnVarArgs)
	ctx.RegisterFunction("NUM", fnNum, 0, eval.FnVarArgs)
	ctx.RegisterFunction("NUMMATCH", fnNummatch, 0, eval.FnVarArgs)
	ctx.RegisterFunction("NUMMEMBER", fnNummember, 0, eval.FnVarArgs)
	ctx.RegisterFunction("OBJ", fnObj, 0, eval.FnVarArgs)
	ctx.RegisterFunction("OBJCALL", fnObjcall, 0, eval.FnVarArgs)
	ctx.RegisterFunction("OBJEVAL", fnObjeval, 0, eval.FnVarArgs)
	ctx.RegisterFunction("OBJID", fnObjid, 0, eval.FnVarArgs)
	ctx.RegisterFunction("OBJMEM", fnObjmem, 0, eval.FnVarArgs)
	ctx.RegisterFunction("OEMIT", fnOemit, 0, eval.FnVarArgs|eval.FnOutFX)
	ctx.RegisterFunction("OR", fnOr, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ORBOOL", fnOrbool, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ORFLAGS", fnOrflags, 0, eval.FnVarArgs)
	ctx.RegisterFunction("OWNER", fnOwner, 0, eval.FnVarArgs)
	ctx.RegisterFunction("PARENT", fnParent, 0, eval.FnVarArgs)
	ctx.RegisterFunction("PARSE", fnParse, 0, eval.FnVarArgs)
	ctx.RegisterFunction("PEEK", fnPeek, 0, eval.FnVarArgs)
	ctx.RegisterFunction("PEMIT", fnPemit, 0, eval.FnVarArgs|eval.FnOutFX)
	ctx.RegisterFunction("PFIND", fnPfind, 0, eval.FnVarArgs)
	ctx.RegisterFunction("PI", fnPi, 0, eval.FnVarArgs)
	ctx.RegisterFunction("PITCH", fnPitch, 0, eval.FnVarArgs)
	ctx.RegisterFunction("PLAYMEM", fnPlaymem, 0, eval.FnVarArgs)
	ctx.RegisterFunction("PMATCH", fnPmatch, 0, eval.FnVarArgs)
	ctx.RegisterFunction("POP", fnPop, 0, eval.FnVarArgs|eval.FnStackFX)
	ctx.RegisterFunction("POPN", fnPopn, 0, eval.FnVarArgs|eval.FnStackFX)
	ctx.RegisterFunction("PORTS", fnPorts, 0, eval.FnVarArgs)
	ctx.RegisterFunction("POS", fnPos, 0, eval.FnVarArgs)
	ctx.RegisterFunction("POSS", fnPoss, 0, eval.FnVarArgs)
	ctx.RegisterFunction("POWER", fnPower, 0, eval.FnVarArgs)
	ctx.RegisterFunction("PRINTF", fnPrintf, 0, eval.FnVarArgs)
	ctx.RegisterFunction("PRIVATE", fnPrivate, 0, eval.FnVarArgs)
	ctx.RegisterFunction("PROGRAMMER", fnProgrammer, 0, eval.FnVarArgs)
	ctx.RegisterFunction("PUSH", fnPush, 0, eval.FnVarArgs|eval.FnStackFX)
	ctx.RegisterFunction("QVARS", fnQvars, 0, eval.FnVarArgs)
	ctx.RegisterFunction("R", fnR, 0, eval.FnVarArgs)
	ctx.RegisterFunction("RAND", fnRand, 0, eval.FnVarArgs)
	ctx.RegisterFunction("RANDEXTRACT", fnRandextract, 0, eval.FnVarArgs)
	ctx.RegisterFunction("RBORDER", fnRborder, 0, eval.FnVarArgs)
	ctx.RegisterFunction("READ", fnReadStruct, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REGEDIT", fnRegedit, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REGEDITALL", fnRegeditall, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REGEDITALLI", fnRegeditalli, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REGEDITI", fnRegediti, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REGMATCH", fnRegmatch, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REGMATCHI", fnRegmatchi, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REGPARSE", fnRegparse, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REGPARSEI", fnRegparsei, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REGRAB", fnRegrab, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REGRABALL", fnRegraball, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REGRABALLI", fnRegraballi, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REGRABI", fnRegrabi, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REGREP", fnRegrep, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REGREPI", fnRegrepi, 0, eval.FnVarArgs)
	ctx.RegisterFunction("RELVEL", fnRelvel, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REMIT", fnRemit, 0, eval.FnVarArgs|eval.FnOutFX)
	ctx.RegisterFunction("REMOVE", fnRemove, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REPEAT", fnRepeat, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REPLACE", fnReplace, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REST", fnRest, 0, eval.FnVarArgs)
	ctx.RegisterFunction("RESTARTS", fnRestarts, 0, eval.FnVarArgs)
	ctx.RegisterFunction("RESTARTTIME", fnRestarttime, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REVERSE", fnReverse, 0, eval.FnVarArgs)
	ctx.RegisterFunction("REVWORDS", fnRevwords, 0, eval.FnVarArgs)
	ctx.RegisterFunction("RIGHT", fnRight, 0, eval.FnVarArgs)
	ctx.RegisterFunction("RJUST", fnRjust, 0, eval.FnVarArgs)
	ctx.RegisterFunction("RLOC", fnRloc, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ROMAN", fnRoman, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ROOM", fnRoom, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ROUND", fnRound, 0, eval.FnVarArgs)
	ctx.RegisterFunction("RTABLES", fnRtables, 0, eval.FnVarArgs)
	ctx.RegisterFunction("S", fnS, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SANDBOX", fnSandbox, 0, eval.FnVarArgs|eval.FnNoEval)
	ctx.RegisterFunction("SCRAMBLE", fnScramble, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SEARCH", fnSearch, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SECS", fnSecs, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SECURE", fnSecure, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SEES", fnSees, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SESSION", fnSession, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SET", fnSet, 0, eval.FnVarArgs|eval.FnDBFX)
	ctx.RegisterFunction("SETATTRDEF", fnSetattrdef, 0, eval.FnVarArgs|eval.FnDBFX)
	ctx.RegisterFunction("SETDIFF", fnSetdiff, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SETGRID", fnSetgrid, 0, eval.FnVarArgs|eval.FnDBFX)
	ctx.RegisterFunction("SETINTER", fnSetinter, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SETQ", fnSetq, 0, eval.FnVarArgs|eval.FnQFX)
	ctx.RegisterFunction("SETR", fnSetr, 0, eval.FnVarArgs|eval.FnQFX)
	ctx.RegisterFunction("SETUNION", fnSetunion, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SETX", fnSetx, 0, eval.FnVarArgs|eval.FnVarFX)
	ctx.RegisterFunction("SHL", fnShl, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SHR", fnShr, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SHUFFLE", fnShuffle, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SIGN", fnSign, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SIN", fnSin, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SIND", fnSind, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SINGLETIME", fnSingletime, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SINH", fnSinh, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SORT", fnSort, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SORTBY", fnSortby, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SOUNDEX", fnSoundex, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SOUNDLIKE", fnSoundlike, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SPACE", fnSpace, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SPEAK", fnSpeak, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SPELL", fnSpell, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SPELLCHECK", fnSpellcheck, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SPELLNUM", fnSpellnum, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SPLICE", fnSplice, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SQL", fnSQL, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SQLESCAPE", fnSQLEscape, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SQRT", fnSqrt, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SQUISH", fnSquish, 0, eval.FnVarArgs)
	ctx.RegisterFunction("STARTTIME", fnStarttime, 0, eval.FnVarArgs)
	ctx.RegisterFunction("STATS", fnStats, 0, eval.FnVarArgs)
	ctx.RegisterFunction("STEP", fnStep, 0, eval.FnVarArgs)
	ctx.RegisterFunction("STORE", fnStore, 0, eval.FnVarArgs)
	ctx.RegisterFunction("STRCAT", fnStrcat, 0, eval.FnVarArgs)
	ctx.RegisterFunction("STRDISTANCE", fnStrdistance, 0, eval.FnVarArgs)
	ctx.RegisterFunction("STREQ", fnStreq, 0, eval.FnVarArgs)
	ctx.RegisterFunction("STRIP", fnStrip, 0, eval.FnVarArgs)
	ctx.RegisterFunction("STRIPANSI", fnStripansi, 0, eval.FnVarArgs)
	ctx.RegisterFunction("STRLEN", fnStrlen, 0, eval.FnVarArgs)
	ctx.RegisterFunction("STRLENVIS", fnStrlenvis, 0, eval.FnVarArgs)
	ctx.RegisterFunction("STRMATCH", fnStrmatch, 0, eval.FnVarArgs)
	ctx.RegisterFunction("STRUCTURE", fnStructure, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SUB", fnSub, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SUBEVAL", fnSubeval, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SUBJ", fnSubj, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SWAP", fnSwap, 0, eval.FnVarArgs|eval.FnStackFX)
	ctx.RegisterFunction("SWITCH", fnSwitch, 0, eval.FnVarArgs)
	ctx.RegisterFunction("SWITCHALL", fnSwitchAll, 0, eval.FnVarArgs)
	ctx.RegisterFunction("T", fnT, 0, eval.FnVarArgs)
	ctx.RegisterFunction("TABLE", fnTable, 0, eval.FnVarArgs)
	ctx.RegisterFunction("TABLES", fnTables, 0, eval.FnVarArgs)
	ctx.RegisterFunction("TAN", fnTan, 0, eval.FnVarArgs)
	ctx.RegisterFunction("TAND", fnTand, 0, eval.FnVarArgs)
	ctx.RegisterFunction("TANH", fnTanh, 0, eval.FnVarArgs)
	ctx.RegisterFunction("TEL", fnTel, 0, eval.FnVarArgs)
	ctx.RegisterFunction("THINK", fnThink, 0, eval.FnVarArgs|eval.FnOutFX)
	ctx.RegisterFunction("TIME", fnTime, 0, eval.FnVarArgs)
	ctx.RegisterFunction("TIMEFMT", fnTimefmt, 0, eval.FnVarArgs)
	ctx.RegisterFunction("TOBIN", fnTobin, 0, eval.FnVarArgs)
	ctx.RegisterFunction("TODEC", fnTodec, 0, eval.FnVarArgs)
	ctx.RegisterFunction("TOHEX", fnTohex, 0, eval.FnVarArgs)
	ctx.RegisterFunction("TOOCT", fnTooct, 0, eval.FnVarArgs)
	ctx.RegisterFunction("TOSS", fnToss, 0, eval.FnVarArgs|eval.FnStackFX)
	ctx.RegisterFunction("TR", fnTr, 0, eval.FnVarArgs)
	ctx.RegisterFunction("TRANSLATE", fnTranslate, 0, eval.FnVarArgs)
	ctx.RegisterFunction("TRIGGER", fnTrigger, 0, eval.FnVarArgs|eval.FnDBFX)
	ctx.RegisterFunction("TRIM", fnTrim, 0, eval.FnVarArgs)
	ctx.RegisterFunction("TRUNC", fnTrunc, 0, eval.FnVarArgs)
	ctx.RegisterFunction("TYPE", fnType, 0, eval.FnVarArgs)
	ctx.RegisterFunction("U", fnU, 0, eval.FnVarArgs)
	ctx.RegisterFunction("UCSTR", fnUcstr, 0, eval.FnVarArgs)
	ctx.RegisterFunction("UDEFAULT", fnUdefault, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ULOCAL", fnUlocal, 0, eval.FnVarArgs)
	ctx.RegisterFunction("UNLOAD", fnUnload, 0, eval.FnVarArgs|eval.FnDBFX)
	ctx.RegisterFunction("UNSTRUCTURE", fnUnstructure, 0, eval.FnVarArgs)
	ctx.RegisterFunction("UNTIL", fnUntil, 0, eval.FnVarArgs)
	ctx.RegisterFunction("UPRIVATE", fnUprivate, 0, eval.FnVarArgs)
	ctx.RegisterFunction("URL_ESCAPE", fnUrlEscape, 0, eval.FnVarArgs)
	ctx.RegisterFunction("URL_UNESCAPE", fnUrlUnescape, 0, eval.FnVarArgs)
	ctx.RegisterFunction("USEFALSE", fnUsefalse, 0, eval.FnVarArgs)
	ctx.RegisterFunction("USETRUE", fnUsetrue, 0, eval.FnVarArgs)
	ctx.RegisterFunction("V", fnV, 0, eval.FnVarArgs)
	ctx.RegisterFunction("VADD", fnVadd, 0, eval.FnVarArgs)
	ctx.RegisterFunction("VALID", fnValid, 0, eval.FnVarArgs)
	ctx.RegisterFunction("VCLAMP", fnVclamp, 0, eval.FnVarArgs)
	ctx.RegisterFunction("VCROSS", fnVcross, 0, eval.FnVarArgs)
	ctx.RegisterFunction("VDIM", fnVdim, 0, eval.FnVarArgs)
	ctx.RegisterFunction("VDIST", fnVdist, 0, eval.FnVarArgs)
	ctx.RegisterFunction("VDOT", fnVdot, 0, eval.FnVarArgs)
	ctx.RegisterFunction("VEC2H", fnVec2h, 0, eval.FnVarArgs)
	ctx.RegisterFunction("VERSION", fnVersion, 0, eval.FnVarArgs)
	ctx.RegisterFunction("VISIBLE", fnVisible, 0, eval.FnVarArgs)
	ctx.RegisterFunction("VLERP", fnVlerp, 0, eval.FnVarArgs)
	ctx.RegisterFunction("VMAG", fnVmag, 0, eval.FnVarArgs)
	ctx.RegisterFunction("VMUL", fnVmul, 0, eval.FnVarArgs)
	ctx.RegisterFunction("VNEAR", fnVnear, 0, eval.FnVarArgs)
	ctx.RegisterFunction("VRAND", fnVrand, 0, eval.FnVarArgs)
	ctx.RegisterFunction("VRANDC", fnVrandc, 0, eval.FnVarArgs)
	ctx.RegisterFunction("VSUB", fnVsub, 0, eval.FnVarArgs)
	ctx.RegisterFunction("VUNIT", fnVunit, 0, eval.FnVarArgs)
	ctx.RegisterFunction("WAIT", fnWait, 0, eval.FnVarArgs)
	ctx.RegisterFunction("WHENFALSE", fnWhenfalse, 0, eval.FnVarArgs)
	ctx.RegisterFunction("WHENFALSE2", fnWhenfalse2, 0, eval.FnVarArgs)
	ctx.RegisterFunction("WHENTRUE", fnWhentrue, 0, eval.FnVarArgs)
	ctx.RegisterFunction("WHENTRUE2", fnWhentrue2, 0, eval.FnVarArgs)
	ctx.RegisterFunction("WHERE", fnWhere, 0, eval.FnVarArgs)
	ctx.RegisterFunction("WHILE", fnWhile, 0, eval.FnVarArgs)
	ctx.RegisterFunction("WILDGREP", fnWildgrep, 0, eval.FnVarArgs)
	ctx.RegisterFunction("WILDMATCH", fnWildmatch, 0, eval.FnVarArgs)
	ctx.RegisterFunction("WILDPARSE", fnWildparse, 0, eval.FnVarArgs)
	ctx.RegisterFunction("WIPE", fnWipe, 0, eval.FnVarArgs|eval.FnDBFX)
	ctx.RegisterFunction("WORDPOS", fnWordpos, 0, eval.FnVarArgs)
	ctx.RegisterFunction("WORDS", fnWords, 0, eval.FnVarArgs)
	ctx.RegisterFunction("WRAP", fnWrap, 0, eval.FnVarArgs)
	ctx.RegisterFunction("WRITABLE", fnWritable, 0, eval.FnVarArgs)
	ctx.RegisterFunction("WRITE", fnWriteStruct, 0, eval.FnVarArgs|eval.FnDBFX)
	ctx.RegisterFunction("X", fnX, 0, eval.FnVarArgs)
	ctx.RegisterFunction("XCON", fnXcon, 0, eval.FnVarArgs)
	ctx.RegisterFunction("XGET", fnXget, 0, eval.FnVarArgs|eval.FnVarFX)
	ctx.RegisterFunction("XNOR", fnXnor, 0, eval.FnVarArgs)
	ctx.RegisterFunction("XOR", fnXor, 0, eval.FnVarArgs)
	ctx.RegisterFunction("XORBOOL", fnXorbool, 0, eval.FnVarArgs)
	ctx.RegisterFunction("XVARS", fnXvars, 0, eval.FnVarArgs)
	ctx.RegisterFunction("Z", fnZ, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ZFUN", fnZfun, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ZONE", fnZone, 0, eval.FnVarArgs)
	ctx.RegisterFunction("ZWHO", fnZwho, 0, eval.FnVarArgs)
}

