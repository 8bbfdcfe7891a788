// Package setup reconciles a declarative guild layout against a live guild.
//
// A Configuration declares roles, categories and the channels within each category.
// Engine.Reconcile walks it in a fixed order (roles, then each category followed by its
// channels), asks a Gateway whether each resource already exists, and creates only what is
// missing. Every attempt is recorded as an Action, and Render turns the recorded sequence
// into a human-readable report.
//
// A dry run records every declared resource as planned and never calls the Gateway.
package setup
