// Package model defines the structural entity types for Ferrite.
// A model snapshot is a flat set of members, joints, plates, bolts,
// and welds in a consistent millimeter coordinate system, plus the
// clash and correction records the consistency engine produces over it.
package model
