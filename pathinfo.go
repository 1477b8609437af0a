package kcgx

import "strings"

// PathComponents is the path decomposition carried in the worker's fixed
// emission order: path-info, suffix, base, sub. Grounded on kcgi.c's
// PATH_INFO handling: the leading path element is the "base" page name,
// anything after the next '/' is "sub", and a trailing ".ext" on the
// base is split off as "suffix".
type PathComponents struct {
	PathInfo string // raw PATH_INFO, unmodified
	Base     string // first path element, suffix stripped
	Suffix   string // trailing file extension on the first element, if any
	Sub      string // remaining path after the first element
}

// SplitPathInfo decomposes PATH_INFO the way kcgi.c does before its
// page/mime dispatch: a single leading '/' is stripped, the first
// component up to the next '/' becomes Base (with any ".suffix" split
// off), and everything after that slash becomes Sub.
func SplitPathInfo(pathInfo string) PathComponents {
	pc := PathComponents{PathInfo: pathInfo}

	cp := pathInfo
	if strings.HasPrefix(cp, "/") {
		cp = cp[1:]
	}
	if cp == "" {
		return pc
	}

	base := cp
	sub := ""
	if i := strings.IndexByte(cp, '/'); i >= 0 {
		base, sub = cp[:i], cp[i+1:]
	}

	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		pc.Suffix = base[i+1:]
		base = base[:i]
	}

	pc.Base = base
	pc.Sub = sub
	return pc
}
