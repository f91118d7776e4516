// Package viz renders running scenarios in the terminal with Bubble Tea.
//
// [Model] steps a simulator frame by frame and draws particle positions on a
// braille [Canvas], either as an x/y projection or through an orbiting
// perspective [Camera]. The energy drift history is plotted beside it.
// [App] wraps the live view in a preset menu.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Rebuild the scenario from its seed
//	V     - Toggle xy / 3d view
//	T     - Cycle color themes
//	< >   - Change steps per frame
//	?     - Show help overlay
package viz
