//go:build !rtcheck

package alloc

const strictBuild = false
