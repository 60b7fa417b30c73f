//go:build debug

package debugflag

const debug = true
