// Package process terminates browser process trees left behind by PDF
// rendering.
package process
