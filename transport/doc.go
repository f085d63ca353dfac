// Package transport abstracts the point-to-point and collective operations
// a distributed forest needs from its process group, mirroring the narrow
// slice of the MPI surface the algorithms actually use rather than the
// whole standard. Two small interfaces (Collectives, PointToPoint) stand in
// for one God interface, the same split massifs/objectstore.go draws
// between ObjectReader and ObjectWriter.
//
// NewLocalComm returns the single-process dummy every test and the CLI's
// default run mode use: CommSize() == 1, send-to-self is an in-memory
// slice copy, and Waitall on zero requests is a no-op.
package transport
