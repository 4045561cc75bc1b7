// Package proctree provides an embeddable engine for editing and executing
// trees of process tasks.
//
// A project is a tree of components. Process groups hold tasks, tasks hold
// calculators and nested tasks, and calculators do the actual work. Data
// flows between calculators through property connections, and components can
// refer to each other through relative links. The package keeps those
// references consistent while the tree is edited and runs tasks one at a
// time.
//
// # Core Concepts
//
//  1. Node
//  2. TaskBuilder
//  3. Editor
//  4. Executor and Coordinator
//  5. Worker and LocalRunner
//
// # Node
//
// Every component is a *Node. Each node has a stable UUID, an Origin pointing
// at the component it was copied from, and ordered properties. Connections
// are stored on the highest parent task of the calculators they join, so a
// task can be copied or moved together with everything it needs.
//
// # TaskBuilder
//
// TaskBuilder is the fluent API used to define tasks in code:
//
//	proctree.NewTask("Compute").
//	    Calculator(proctree.ClassConstant, "two", proctree.Prop("value", 2)).
//	    Calculator(proctree.ClassSum, "sum").
//	    Connect("two", "output", "sum", "a")
//
// # Editor
//
// The Editor applies structural edits: copy, cut, paste, clone, delete, move
// and the smaller property edits. Each edit runs in one transaction and
// returns diagnostics for connections that could not be carried along.
// Components must be READY to be edited.
//
// # Executor and Coordinator
//
// The Executor runs at most one task at a time and queues the rest in FIFO
// order. Termination is cooperative: running tasks stop at the next safe
// point between components. The Coordinator maps a run request on any
// component onto its highest parent task and tells callers which action a
// run control should offer.
//
// # Worker and LocalRunner
//
// A Worker executes whatever task the Executor has promoted to running.
// LocalRunner bundles an Executor, Coordinator, Editor and Worker for
// process-local use, and Bundle adds SQLite-backed project and history
// storage.
//
// For a command line front end, see cmd/proctree.
package proctree
