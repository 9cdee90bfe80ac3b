// Package viz renders the particle display buffer in the terminal.
//
// The package implements a live view using the Bubble Tea framework:
//
//   - [Model]: steps an [sph.Solver] one frame per tick and draws it
//   - [Canvas]: Braille-based pixel canvas, 2×4 dots per cell
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	N     - Advance one frame while paused
//	R     - Scatter the particles again
//	Q     - Quit
package viz
