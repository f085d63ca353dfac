/*
Package quadrant is the leaf-level algebra of the forest: coordinates,
levels, Morton ids, and the ancestor/sibling/family/transform relationships
between quadrants.

None of it knows about trees, connectivity, or processes. Everything above
this package (qtree, ghost, partition) is built from these primitives the
same way massifs is built from mmr's bit arithmetic.
*/
package quadrant
