// Package assets writes the core and theme assets into the output tree, compiles
// the theme stylesheet and computes the asset references placed on every page.
package assets
