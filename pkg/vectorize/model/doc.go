// Package model provides the data structures shared by the vectorize packages.
// It defines the pixel and bitmap buffers, the converter profiles, the run events and results,
// and the hook interface used by pipeline options.
package model
