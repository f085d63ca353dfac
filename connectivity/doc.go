// Package connectivity holds the immutable coarse-mesh topology a forest is
// built from: which trees touch which trees across which faces, which
// trees meet at which vertices, and the symmetry transforms needed to map
// a quadrant's coordinates from one tree's frame into a neighbor's.
package connectivity
