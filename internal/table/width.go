package table

import "github.com/rivo/uniseg"

// Width returns the number of extended grapheme clusters in s.
//
// This approximates the display width of s: a cluster made of several code
// points (a base letter with combining marks, a flag, a ZWJ emoji sequence)
// counts once, and wide East Asian characters also count once.
func Width(s string) int {
	return uniseg.GraphemeClusterCount(s)
}
