// Package interp provides the fractional interpolation used by delay lines.
package interp
