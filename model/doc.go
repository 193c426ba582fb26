// Package model defines the JSON boundary types printed by the reservecid
// command and returned to integrations.
//
// The text forms inside these structs are derived from the codec packages;
// the structs carry no identity of their own.
package model
