package term

// Spine decomposes an application chain `f a1 a2 ... an` into its head
// function and the arguments in source (left-to-right) order.
func Spine(t Term) (fun Term, args []Term) {
	for {
		a, ok := TryApply(t)
		if !ok {
			reverseTerms(args)
			return t, args
		}
		args = append(args, a.Arg)
		t = a.Fun
	}
}

func reverseTerms(ts []Term) {
	for i, j := 0, len(ts)-1; i < j; i, j = i+1, j-1 {
		ts[i], ts[j] = ts[j], ts[i]
	}
}

// UpdateApply rebuilds an Apply spine around a (possibly unchanged) head and
// argument list, reusing t itself when nothing actually changed — the
// pointer-equality-reuse idiom mirrored from the de Bruijn term walkers
// that avoid reallocating subtrees untouched by a rewrite.
func UpdateApply(t Term, newFun Term, newArg Term) Term {
	a, ok := TryApply(t)
	if ok && PtrEq(a.Fun, newFun) && PtrEq(a.Arg, newArg) {
		return t
	}
	return MkApply(newFun, newArg)
}
