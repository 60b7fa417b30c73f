//go:build !debug

package debugflag

const debug = false
